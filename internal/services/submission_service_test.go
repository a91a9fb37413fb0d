package services

import (
	"errors"
	"testing"

	"github.com/coinpoll/coinpoll-backend/internal/dto"
	"github.com/coinpoll/coinpoll-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func TestSubmitFullCompletion(t *testing.T) {
	db := newTestDB(t)
	survey := createGuestSurvey(t, db, true)
	user := createRegisteredUser(t, db, "full@example.com")
	svc := NewSubmissionService(db)

	result, err := svc.Submit(user.ID, survey.ID, fullAnswers(survey), true)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.TotalCoinsEarned != 18 {
		t.Errorf("total coins = %d, want 18 (5 + 3 + 10 bonus)", result.TotalCoinsEarned)
	}
	if !result.Completed {
		t.Error("expected submission to count as completed")
	}

	if got := countRows(t, db, &models.UserAnswer{}, "user_id = ?", user.ID); got != 2 {
		t.Errorf("answer rows = %d, want 2", got)
	}
	if got := countRows(t, db, &models.UserPoint{}, "user_id = ?", user.ID); got != 3 {
		t.Errorf("point rows = %d, want 3 (two answers + bonus)", got)
	}

	var points []models.UserPoint
	if err := db.Where("user_id = ?", user.ID).Order("amount ASC").Find(&points).Error; err != nil {
		t.Fatalf("load points: %v", err)
	}
	amounts := []int{points[0].Amount, points[1].Amount, points[2].Amount}
	if amounts[0] != 3 || amounts[1] != 5 || amounts[2] != 10 {
		t.Errorf("point amounts = %v, want [3 5 10]", amounts)
	}
	if points[2].Reason != "Survey completed: Quick intro survey" {
		t.Errorf("bonus reason = %q", points[2].Reason)
	}
	for _, p := range points[:2] {
		if p.Reason != "Survey answer" {
			t.Errorf("per-answer reason = %q, want %q", p.Reason, "Survey answer")
		}
		if p.SurveyID == nil || *p.SurveyID != survey.ID {
			t.Error("per-answer point not linked to survey")
		}
	}
}

func TestSubmitPartialForfeitsBonus(t *testing.T) {
	db := newTestDB(t)
	survey := createGuestSurvey(t, db, true)
	user := createRegisteredUser(t, db, "partial@example.com")
	svc := NewSubmissionService(db)

	result, err := svc.Submit(user.ID, survey.ID, fullAnswers(survey)[:1], true)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.TotalCoinsEarned != 5 {
		t.Errorf("total coins = %d, want 5 (no completion bonus)", result.TotalCoinsEarned)
	}
	if result.Completed {
		t.Error("partial submission must not count as completed")
	}
	if got := countRows(t, db, &models.UserAnswer{}, "user_id = ?", user.ID); got != 1 {
		t.Errorf("answer rows = %d, want 1", got)
	}
	if got := countRows(t, db, &models.UserPoint{}, "user_id = ?", user.ID); got != 1 {
		t.Errorf("point rows = %d, want 1", got)
	}
}

func TestSubmitSurveyNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewSubmissionService(db)

	_, err := svc.Submit(uuid.New(), uuid.New(), nil, true)
	if !errors.Is(err, ErrSurveyNotFound) {
		t.Errorf("err = %v, want ErrSurveyNotFound", err)
	}
}

func TestSubmitUnpublishedSurvey(t *testing.T) {
	db := newTestDB(t)
	survey := createGuestSurvey(t, db, false)
	if err := db.Model(survey).Update("is_published", false).Error; err != nil {
		t.Fatal(err)
	}
	svc := NewSubmissionService(db)

	_, err := svc.Submit(uuid.New(), survey.ID, fullAnswers(survey), true)
	if !errors.Is(err, ErrSurveyNotPublished) {
		t.Errorf("err = %v, want ErrSurveyNotPublished", err)
	}
}

func TestSubmitDuplicateAuthenticated(t *testing.T) {
	db := newTestDB(t)
	survey := createGuestSurvey(t, db, true)
	user := createRegisteredUser(t, db, "dup@example.com")
	svc := NewSubmissionService(db)

	if _, err := svc.Submit(user.ID, survey.ID, fullAnswers(survey), true); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	answersBefore := countRows(t, db, &models.UserAnswer{}, "user_id = ?", user.ID)
	pointsBefore := countRows(t, db, &models.UserPoint{}, "user_id = ?", user.ID)

	_, err := svc.Submit(user.ID, survey.ID, fullAnswers(survey), true)
	if !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("err = %v, want ErrAlreadyAnswered", err)
	}

	if got := countRows(t, db, &models.UserAnswer{}, "user_id = ?", user.ID); got != answersBefore {
		t.Errorf("duplicate submit wrote %d answer rows", got-answersBefore)
	}
	if got := countRows(t, db, &models.UserPoint{}, "user_id = ?", user.ID); got != pointsBefore {
		t.Errorf("duplicate submit wrote %d point rows", got-pointsBefore)
	}
}

// The guest path deliberately skips the duplicate check: each call is treated
// as a fresh submission. This asymmetry with the authenticated path is
// intentional in the product flow.
func TestSubmitGuestPathAllowsRepeat(t *testing.T) {
	db := newTestDB(t)
	survey := createGuestSurvey(t, db, true)
	guestID := uuid.New()
	svc := NewSubmissionService(db)

	for i := 0; i < 2; i++ {
		if _, err := svc.Submit(guestID, survey.ID, fullAnswers(survey), false); err != nil {
			t.Fatalf("guest submit %d failed: %v", i+1, err)
		}
	}

	if got := countRows(t, db, &models.UserAnswer{}, "user_id = ?", guestID); got != 4 {
		t.Errorf("answer rows = %d, want 4 (two full submissions)", got)
	}
}

func TestSubmitDropsUnknownQuestions(t *testing.T) {
	db := newTestDB(t)
	survey := createGuestSurvey(t, db, true)
	user := createRegisteredUser(t, db, "unknown@example.com")
	svc := NewSubmissionService(db)

	// Two bogus ids plus one real answer: raw count matches the question
	// count, but the answered id set does not, so no bonus.
	answers := []dto.AnswerItem{
		{QuestionID: uuid.NewString(), Answer: dto.AnswerValue{"x"}},
		{QuestionID: "not-even-a-uuid", Answer: dto.AnswerValue{"y"}},
		fullAnswers(survey)[0],
	}

	result, err := svc.Submit(user.ID, survey.ID, answers, true)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.AnswersAccepted != 1 {
		t.Errorf("accepted = %d, want 1", result.AnswersAccepted)
	}
	if result.Completed {
		t.Error("unknown question ids must not satisfy the completion check")
	}
	if result.TotalCoinsEarned != 5 {
		t.Errorf("total coins = %d, want 5", result.TotalCoinsEarned)
	}
}

func TestSubmitDeduplicatesQuestions(t *testing.T) {
	db := newTestDB(t)
	survey := createGuestSurvey(t, db, true)
	user := createRegisteredUser(t, db, "dedup@example.com")
	svc := NewSubmissionService(db)

	first := fullAnswers(survey)[0]
	result, err := svc.Submit(user.ID, survey.ID, []dto.AnswerItem{first, first}, true)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.AnswersAccepted != 1 {
		t.Errorf("accepted = %d, want 1 (duplicate question dropped)", result.AnswersAccepted)
	}
	if result.Completed {
		t.Error("answering one question twice is not completion")
	}
}

// The unique (user, survey) completion index is the hard guarantee behind the
// duplicate check; verify it actually rejects a second row.
func TestCompletionUniqueIndex(t *testing.T) {
	db := newTestDB(t)
	userID, surveyID := uuid.New(), uuid.New()

	first := models.SurveyCompletion{ID: uuid.New(), UserID: userID, SurveyID: surveyID}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("first completion insert failed: %v", err)
	}

	second := models.SurveyCompletion{ID: uuid.New(), UserID: userID, SurveyID: surveyID}
	err := db.Create(&second).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("err = %v, want gorm.ErrDuplicatedKey", err)
	}
}
