package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/academe-go-api/internal/models"
	"github.com/noah-isme/academe-go-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type fakeProgressRepo struct {
	records   []models.ProgressRecord
	err       error
	listCalls int
	nextID    uint
}

func (f *fakeProgressRepo) Create(ctx context.Context, record *models.ProgressRecord) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	record.ID = f.nextID
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeProgressRepo) Get(ctx context.Context, studentID, progressID uint) (*models.ProgressRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.records {
		if f.records[i].StudentID == studentID && f.records[i].ID == progressID {
			record := f.records[i]
			return &record, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProgressRepo) ListByStudent(ctx context.Context, studentID uint, filter repository.ProgressFilter) ([]models.ProgressRecord, error) {
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	result := []models.ProgressRecord{}
	for _, record := range f.records {
		if record.StudentID != studentID {
			continue
		}
		if filter.ActivityType != "" && record.ActivityType != filter.ActivityType {
			continue
		}
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		result = append(result, record)
	}
	return result, nil
}

func (f *fakeProgressRepo) UpdateFields(ctx context.Context, studentID, progressID uint, fields map[string]interface{}) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	for i := range f.records {
		if f.records[i].StudentID != studentID || f.records[i].ID != progressID {
			continue
		}
		if status, ok := fields["status"].(string); ok {
			f.records[i].Status = status
		}
		if score, ok := fields["score"].(float64); ok {
			f.records[i].Score = &score
		}
		return 1, nil
	}
	return 0, nil
}

func (f *fakeProgressRepo) DeleteByStudent(ctx context.Context, studentID uint) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	kept := f.records[:0]
	var removed int64
	for _, record := range f.records {
		if record.StudentID == studentID {
			removed++
			continue
		}
		kept = append(kept, record)
	}
	f.records = kept
	return removed, nil
}

type fakeContentRepo struct {
	courses    map[string][]models.Course
	topics     map[uint][]models.Topic
	subtopics  map[uint][]models.Subtopic
	topicMats  map[uint]int64
	subMats    map[uint]int64
	topicQuiz  map[uint]int64
	subQuiz    map[uint]int64
	quizTitles map[uint]string
	err        error
	listCalls  int
}

func (f *fakeContentRepo) GetCourse(ctx context.Context, courseID uint) (*models.Course, error) {
	for _, courses := range f.courses {
		for _, course := range courses {
			if course.ID == courseID {
				found := course
				return &found, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeContentRepo) ListCoursesByClass(ctx context.Context, className string) ([]models.Course, error) {
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.courses[className], nil
}

func (f *fakeContentRepo) ListTopicsByCourse(ctx context.Context, courseID uint) ([]models.Topic, error) {
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.topics[courseID], nil
}

func (f *fakeContentRepo) ListSubtopicsByTopic(ctx context.Context, topicID uint) ([]models.Subtopic, error) {
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.subtopics[topicID], nil
}

func (f *fakeContentRepo) CountTopicMaterials(ctx context.Context, topicID uint) (int64, error) {
	return f.topicMats[topicID], f.err
}

func (f *fakeContentRepo) CountSubtopicMaterials(ctx context.Context, subtopicID uint) (int64, error) {
	return f.subMats[subtopicID], f.err
}

func (f *fakeContentRepo) CountTopicQuizzes(ctx context.Context, topicID uint) (int64, error) {
	return f.topicQuiz[topicID], f.err
}

func (f *fakeContentRepo) CountSubtopicQuizzes(ctx context.Context, subtopicID uint) (int64, error) {
	return f.subQuiz[subtopicID], f.err
}

func (f *fakeContentRepo) GetQuizTitles(ctx context.Context, ids []uint) (map[uint]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	titles := map[uint]string{}
	for _, id := range ids {
		if title, ok := f.quizTitles[id]; ok {
			titles[id] = title
		}
	}
	return titles, nil
}

type fakeUserRepo struct {
	users map[uint]models.User
	err   error
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if f.err != nil {
		return f.err
	}
	if f.users == nil {
		f.users = map[uint]models.User{}
	}
	if user.ID == 0 {
		user.ID = uint(len(f.users) + 1)
	}
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if user, ok := f.users[id]; ok {
		found := user
		return &found, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, user := range f.users {
		if user.Email == email {
			found := user
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) ListByClass(ctx context.Context, className string) ([]models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := []models.User{}
	for _, user := range f.users {
		if user.StudentClass == className && user.Role == models.RoleStudent {
			result = append(result, user)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeUserRepo) CountByClass(ctx context.Context, className string) (int64, error) {
	students, err := f.ListByClass(ctx, className)
	return int64(len(students)), err
}

func (f *fakeUserRepo) UpdateClass(ctx context.Context, id uint, className string) error {
	if f.err != nil {
		return f.err
	}
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.StudentClass = className
	f.users[id] = user
	return nil
}

func (f *fakeUserRepo) UpdateRole(ctx context.Context, id uint, role string) error {
	if f.err != nil {
		return f.err
	}
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.Role = role
	f.users[id] = user
	return nil
}

func (f *fakeUserRepo) UpdateName(ctx context.Context, id uint, name string) error {
	if f.err != nil {
		return f.err
	}
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.Name = name
	f.users[id] = user
	return nil
}

type fakeTeacherRepo struct {
	profiles map[string]models.TeacherProfile
	err      error
}

func (f *fakeTeacherRepo) Create(ctx context.Context, profile *models.TeacherProfile) error {
	if f.err != nil {
		return f.err
	}
	if f.profiles == nil {
		f.profiles = map[string]models.TeacherProfile{}
	}
	if profile.ID == 0 {
		profile.ID = uint(len(f.profiles) + 1)
	}
	f.profiles[profile.Email] = *profile
	return nil
}

func (f *fakeTeacherRepo) GetByUserID(ctx context.Context, userID uint) (*models.TeacherProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, profile := range f.profiles {
		if profile.UserID != nil && *profile.UserID == userID {
			found := profile
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTeacherRepo) GetByEmail(ctx context.Context, email string) (*models.TeacherProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	if profile, ok := f.profiles[email]; ok {
		found := profile
		return &found, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTeacherRepo) List(ctx context.Context) ([]models.TeacherProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := []models.TeacherProfile{}
	for _, profile := range f.profiles {
		result = append(result, profile)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeTeacherRepo) Save(ctx context.Context, profile *models.TeacherProfile) error {
	if f.err != nil {
		return f.err
	}
	f.profiles[profile.Email] = *profile
	return nil
}

func (f *fakeTeacherRepo) DeleteByEmail(ctx context.Context, email string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.profiles, email)
	return nil
}

type fakeAdminRepo struct {
	emails  map[string]bool
	userIDs map[uint]bool
}

func (f *fakeAdminRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return f.emails[email], nil
}

func (f *fakeAdminRepo) ExistsByUserID(ctx context.Context, userID uint) (bool, error) {
	return f.userIDs[userID], nil
}

type fakeLiveClassRepo struct {
	classes map[string]models.LiveClass
	err     error
}

func (f *fakeLiveClassRepo) Create(ctx context.Context, class *models.LiveClass) error {
	if f.err != nil {
		return f.err
	}
	if f.classes == nil {
		f.classes = map[string]models.LiveClass{}
	}
	if class.ID == 0 {
		class.ID = uint(len(f.classes) + 1)
	}
	f.classes[class.ReferenceID] = *class
	return nil
}

func (f *fakeLiveClassRepo) GetByReference(ctx context.Context, referenceID string) (*models.LiveClass, error) {
	if f.err != nil {
		return nil, f.err
	}
	if class, ok := f.classes[referenceID]; ok {
		found := class
		return &found, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLiveClassRepo) Save(ctx context.Context, class *models.LiveClass) error {
	if f.err != nil {
		return f.err
	}
	f.classes[class.ReferenceID] = *class
	return nil
}

func (f *fakeLiveClassRepo) ListUpcomingByTeacher(ctx context.Context, teacherID uint, from time.Time) ([]models.LiveClass, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := []models.LiveClass{}
	for _, class := range f.classes {
		if class.TeacherID != teacherID {
			continue
		}
		if class.Status != models.LiveClassScheduled && class.Status != models.LiveClassLive {
			continue
		}
		if class.ScheduledAt.Before(from) {
			continue
		}
		result = append(result, class)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ScheduledAt.Before(result[j].ScheduledAt) })
	return result, nil
}

func (f *fakeLiveClassRepo) ListRecordedByTeacher(ctx context.Context, teacherID uint) ([]models.LiveClass, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := []models.LiveClass{}
	for _, class := range f.classes {
		if class.TeacherID == teacherID && class.Status == models.LiveClassCompleted && class.RecordingURL != nil {
			result = append(result, class)
		}
	}
	return result, nil
}

func (f *fakeLiveClassRepo) CountCompletedByTeacher(ctx context.Context, teacherID uint) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var count int64
	for _, class := range f.classes {
		if class.TeacherID == teacherID && class.Status == models.LiveClassCompleted {
			count++
		}
	}
	return count, nil
}
