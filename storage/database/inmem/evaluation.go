package inmemdb

import (
	"math"
	"sort"

	"github.com/trezcool/aulavirtual/core/course"
	"github.com/trezcool/aulavirtual/core/enrollment"
	"github.com/trezcool/aulavirtual/core/evaluation"
)

const (
	defaultScale        = "0-100"
	defaultPassingGrade = 50
)

type gradeRecord struct {
	ID       string
	CourseID string
	ItemID   string
	UserID   string
	Grade    float64
	Feedback *string
	GradedAt string
	GradedBy string
}

func (db *DB) findGrade(itemID, userID string) *gradeRecord {
	for _, g := range db.grades {
		if g.ItemID == itemID && g.UserID == userID {
			return g
		}
	}
	return nil
}

// Gradebook builds the student x gradable-item matrix of courseID.
func (db *DB) Gradebook(courseID string) (evaluation.Gradebook, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var gb evaluation.Gradebook
	crs, ok := db.courses[courseID]
	if !ok {
		return gb, ErrNotFound
	}
	gb.Course.ID = crs.ID
	gb.Course.Fullname = crs.Fullname
	gb.Settings.Scale = defaultScale
	gb.Settings.PassingGrade = defaultPassingGrade

	gb.Items = make([]course.Item, 0)
	for _, sec := range db.courseSections(courseID) {
		for _, it := range db.sectionItems(sec.ID) {
			if it.Type.Gradable() {
				gb.Items = append(gb.Items, copyItem(it))
			}
		}
	}

	gb.Students = make([]evaluation.StudentRow, 0)
	for _, e := range db.enrollments {
		if e.CourseID != courseID || e.Role != enrollment.RoleStudent {
			continue
		}
		row := evaluation.StudentRow{
			UserID:   e.UserID,
			Grades:   make(map[string]evaluation.GradeCell, len(gb.Items)),
			Progress: e.ProgressPercentage,
		}
		if rec, ok := db.users[e.UserID]; ok {
			row.User = evaluation.StudentSummary{FirstName: rec.FirstName, LastName: rec.LastName, Email: rec.Email}
		}

		var sum float64
		var graded int
		for _, it := range gb.Items {
			g := db.findGrade(it.ID, e.UserID)
			if g == nil {
				row.Grades[it.ID] = evaluation.GradeCell{}
				continue
			}
			grade, gradedAt := g.Grade, g.GradedAt
			row.Grades[it.ID] = evaluation.GradeCell{Grade: &grade, Feedback: g.Feedback, GradedAt: &gradedAt}
			sum += g.Grade
			graded++
		}
		if graded > 0 {
			avg := math.Round(sum/float64(graded)*100) / 100
			row.Average = &avg
		}
		gb.Students = append(gb.Students, row)
	}
	sort.SliceStable(gb.Students, func(i, j int) bool {
		return gb.Students[i].User.LastName+gb.Students[i].User.FirstName <
			gb.Students[j].User.LastName+gb.Students[j].User.FirstName
	})
	return gb, nil
}

// SetGrade inserts or replaces the grade of a user on an item and returns the grade id.
func (db *DB) SetGrade(data evaluation.SetGrade, gradedBy string) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	item, ok := db.items[data.ItemID]
	if !ok || item.CourseID != data.CourseID {
		return "", ErrNotFound
	}
	if _, ok := db.users[data.UserID]; !ok {
		return "", ErrUnknownUser
	}

	var feedback *string
	if data.Feedback != "" {
		fb := data.Feedback
		feedback = &fb
	}
	g := db.findGrade(data.ItemID, data.UserID)
	if g == nil {
		g = &gradeRecord{ID: newID(), CourseID: data.CourseID, ItemID: data.ItemID, UserID: data.UserID}
		db.grades[g.ID] = g
	}
	g.Grade = data.Grade
	g.Feedback = feedback
	g.GradedAt = db.now()
	g.GradedBy = gradedBy
	return g.ID, nil
}

func (db *DB) MyGrades(courseID, userID string) []evaluation.MyGrade {
	db.mu.RLock()
	defer db.mu.RUnlock()

	grades := make([]evaluation.MyGrade, 0)
	for _, g := range db.grades {
		if g.CourseID != courseID || g.UserID != userID {
			continue
		}
		mg := evaluation.MyGrade{
			ID:       g.ID,
			ItemID:   g.ItemID,
			CourseID: g.CourseID,
			Grade:    g.Grade,
			Feedback: g.Feedback,
			GradedAt: g.GradedAt,
		}
		if it, ok := db.items[g.ItemID]; ok {
			mg.Item = &evaluation.ItemRef{Title: it.Title, Type: it.Type}
		}
		grades = append(grades, mg)
	}
	sort.SliceStable(grades, func(i, j int) bool { return grades[i].GradedAt > grades[j].GradedAt })
	return grades
}

// Question bank

func (db *DB) ListQuestionCategories(courseID string) []evaluation.QuestionCategory {
	db.mu.RLock()
	defer db.mu.RUnlock()

	cats := make([]evaluation.QuestionCategory, 0)
	for _, qc := range db.qcategories {
		if qc.CourseID == courseID {
			cats = append(cats, *qc)
		}
	}
	sort.SliceStable(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats
}

func (db *DB) CreateQuestionCategory(courseID, name, description string) (evaluation.QuestionCategory, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.courses[courseID]; !ok {
		return evaluation.QuestionCategory{}, ErrNotFound
	}
	qc := &evaluation.QuestionCategory{
		ID:          newID(),
		CourseID:    courseID,
		Name:        name,
		Description: description,
		CreatedAt:   db.now(),
	}
	db.qcategories[qc.ID] = qc
	return *qc, nil
}

func copyQuestion(q *evaluation.Question) evaluation.Question {
	cp := *q
	cp.Options = append(make([]evaluation.Option, 0, len(q.Options)), q.Options...)
	return cp
}

func (db *DB) ListQuestions(courseID string, filter evaluation.QuestionFilter) []evaluation.Question {
	db.mu.RLock()
	defer db.mu.RUnlock()

	questions := make([]evaluation.Question, 0)
	for _, q := range db.questions {
		if q.CourseID != courseID {
			continue
		}
		if filter.CategoryID != "" && q.CategoryID != filter.CategoryID {
			continue
		}
		if filter.Type != "" && q.Type != filter.Type {
			continue
		}
		questions = append(questions, copyQuestion(q))
	}
	sort.SliceStable(questions, func(i, j int) bool { return questions[i].CreatedAt < questions[j].CreatedAt })
	return questions
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (db *DB) CreateQuestion(courseID string, data evaluation.NewQuestion, createdBy string) (evaluation.Question, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.courses[courseID]; !ok {
		return evaluation.Question{}, ErrNotFound
	}
	if qc, ok := db.qcategories[data.CategoryID]; !ok || qc.CourseID != courseID {
		return evaluation.Question{}, ErrUnknownCategory
	}
	q := &evaluation.Question{
		ID:            newID(),
		CourseID:      courseID,
		CategoryID:    data.CategoryID,
		Type:          data.Type,
		Text:          data.Text,
		Points:        data.Points,
		Options:       append(make([]evaluation.Option, 0, len(data.Options)), data.Options...),
		CorrectAnswer: optionalString(data.CorrectAnswer),
		Feedback:      optionalString(data.Feedback),
		CreatedBy:     createdBy,
		CreatedAt:     db.now(),
	}
	db.questions[q.ID] = q
	return copyQuestion(q), nil
}

func (db *DB) GetQuestion(id string) (evaluation.Question, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if q, ok := db.questions[id]; ok {
		return copyQuestion(q), nil
	}
	return evaluation.Question{}, ErrNotFound
}

func (db *DB) UpdateQuestion(id string, data evaluation.UpdateQuestion) (evaluation.Question, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	q, ok := db.questions[id]
	if !ok {
		return evaluation.Question{}, ErrNotFound
	}
	if data.CategoryID != nil {
		if qc, ok := db.qcategories[*data.CategoryID]; !ok || qc.CourseID != q.CourseID {
			return evaluation.Question{}, ErrUnknownCategory
		}
		q.CategoryID = *data.CategoryID
	}
	if data.Text != nil {
		q.Text = *data.Text
	}
	if data.Points != nil {
		q.Points = *data.Points
	}
	if data.Options != nil {
		q.Options = append(make([]evaluation.Option, 0, len(data.Options)), data.Options...)
	}
	if data.CorrectAnswer != nil {
		q.CorrectAnswer = optionalString(*data.CorrectAnswer)
	}
	if data.Feedback != nil {
		q.Feedback = optionalString(*data.Feedback)
	}
	return copyQuestion(q), nil
}

func (db *DB) DeleteQuestion(id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.questions[id]; !ok {
		return ErrNotFound
	}
	delete(db.questions, id)
	return nil
}
