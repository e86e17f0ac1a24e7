package school

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"webcourse/internal/common"
	"webcourse/internal/gormdb"
)

// ErrCourseInUse is returned when deleting a course that still has teachers
// or students assigned to it.
var ErrCourseInUse = errors.New("school: course still has teachers or students")

// Store wraps the academy database.
type Store struct {
	db *gorm.DB
}

// NewStore opens the database at dbPath, migrates the schema and seeds it
// with sample courses, teachers and students when empty.
func NewStore(dbPath string) (*Store, error) {
	db, err := gormdb.Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Course{}, &Teacher{}, &Student{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	s := &Store{db: db}
	if err := s.seed(); err != nil {
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return gormdb.Close(s.db)
}

func (s *Store) seed() error {
	var count int64
	if err := s.db.Model(&Teacher{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	courses := []Course{
		{Name: "Mathematics", Description: "Algebra & Calculus"},
		{Name: "Physics", Description: "Mechanics & Electromagnetism"},
		{Name: "Chemistry", Description: "Organic & Inorganic Chemistry"},
	}
	if err := s.db.Create(&courses).Error; err != nil {
		return err
	}

	teachers := []Teacher{
		{Name: "Dr. Sarah Wilson", Email: "sarah@academy.com", CourseID: courses[0].ID},
		{Name: "Mr. John Davis", Email: "john@academy.com", CourseID: courses[0].ID},
		{Name: "Prof. Lisa Chen", Email: "lisa@academy.com", CourseID: courses[1].ID},
		{Name: "Dr. Raj Patel", Email: "raj@academy.com", CourseID: courses[2].ID},
	}
	if err := s.db.Create(&teachers).Error; err != nil {
		return err
	}

	students := []Student{
		{Name: "Rahul Kumar", Email: "rahul@student.com", CourseID: courses[0].ID},
		{Name: "Priya Singh", Email: "priya@student.com", CourseID: courses[1].ID},
	}
	return s.db.Create(&students).Error
}

// --- Students ---

// ListStudents returns all students, newest first, with their course and its
// teachers preloaded.
func (s *Store) ListStudents(ctx context.Context) ([]Student, error) {
	var students []Student
	err := s.db.WithContext(ctx).
		Preload("Course.Teachers").
		Order("id DESC").
		Find(&students).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

// GetStudent returns the student with the given id.
func (s *Store) GetStudent(ctx context.Context, id uint) (*Student, error) {
	var st Student
	err := s.db.WithContext(ctx).Preload("Course").First(&st, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &st, nil
}

// CreateStudent inserts a new student after checking the course exists and
// the email is free.
func (s *Store) CreateStudent(ctx context.Context, st *Student) error {
	if err := s.checkCourseExists(ctx, st.CourseID); err != nil {
		return err
	}
	if err := s.checkEmailFree(ctx, &Student{}, st.Email, 0); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(st).Error; err != nil {
		if gormdb.IsUniqueViolation(err) {
			return common.ErrDuplicate
		}
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

// UpdateStudent overwrites the student with the given id.
func (s *Store) UpdateStudent(ctx context.Context, st *Student) error {
	if _, err := s.GetStudent(ctx, st.ID); err != nil {
		return err
	}
	if err := s.checkCourseExists(ctx, st.CourseID); err != nil {
		return err
	}
	if err := s.checkEmailFree(ctx, &Student{}, st.Email, st.ID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Model(&Student{ID: st.ID}).
		Updates(map[string]any{"name": st.Name, "email": st.Email, "course_id": st.CourseID}).Error
	if err != nil {
		if gormdb.IsUniqueViolation(err) {
			return common.ErrDuplicate
		}
		return fmt.Errorf("failed to update student: %w", err)
	}
	return nil
}

// DeleteStudent removes the student with the given id.
func (s *Store) DeleteStudent(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&Student{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete student: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// --- Teachers ---

// ListTeachers returns all teachers ordered by name with courses preloaded.
func (s *Store) ListTeachers(ctx context.Context) ([]Teacher, error) {
	var teachers []Teacher
	err := s.db.WithContext(ctx).
		Preload("Course").
		Order("name").
		Find(&teachers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list teachers: %w", err)
	}
	return teachers, nil
}

// GetTeacher returns the teacher with the given id.
func (s *Store) GetTeacher(ctx context.Context, id uint) (*Teacher, error) {
	var t Teacher
	err := s.db.WithContext(ctx).Preload("Course").First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get teacher: %w", err)
	}
	return &t, nil
}

// CreateTeacher inserts a new teacher after checking the course exists and
// the email is free.
func (s *Store) CreateTeacher(ctx context.Context, t *Teacher) error {
	if err := s.checkCourseExists(ctx, t.CourseID); err != nil {
		return err
	}
	if err := s.checkEmailFree(ctx, &Teacher{}, t.Email, 0); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		if gormdb.IsUniqueViolation(err) {
			return common.ErrDuplicate
		}
		return fmt.Errorf("failed to create teacher: %w", err)
	}
	return nil
}

// UpdateTeacher overwrites the teacher with the given id.
func (s *Store) UpdateTeacher(ctx context.Context, t *Teacher) error {
	if _, err := s.GetTeacher(ctx, t.ID); err != nil {
		return err
	}
	if err := s.checkCourseExists(ctx, t.CourseID); err != nil {
		return err
	}
	if err := s.checkEmailFree(ctx, &Teacher{}, t.Email, t.ID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Model(&Teacher{ID: t.ID}).
		Updates(map[string]any{"name": t.Name, "email": t.Email, "course_id": t.CourseID}).Error
	if err != nil {
		if gormdb.IsUniqueViolation(err) {
			return common.ErrDuplicate
		}
		return fmt.Errorf("failed to update teacher: %w", err)
	}
	return nil
}

// DeleteTeacher removes the teacher with the given id.
func (s *Store) DeleteTeacher(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&Teacher{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete teacher: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// --- Courses ---

// ListCourses returns all courses with teachers and students preloaded.
func (s *Store) ListCourses(ctx context.Context) ([]Course, error) {
	var courses []Course
	err := s.db.WithContext(ctx).
		Preload("Teachers").
		Preload("Students").
		Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

// GetCourse returns the course with the given id.
func (s *Store) GetCourse(ctx context.Context, id uint) (*Course, error) {
	var c Course
	err := s.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return &c, nil
}

// CreateCourse inserts a new course. When teacherID is non-zero, that
// teacher is reassigned to the new course.
func (s *Store) CreateCourse(ctx context.Context, c *Course, teacherID uint) error {
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	if teacherID == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Model(&Teacher{ID: teacherID}).
		Update("course_id", c.ID).Error
	if err != nil {
		return fmt.Errorf("failed to assign teacher to course: %w", err)
	}
	return nil
}

// UpdateCourse overwrites the course with the given id.
func (s *Store) UpdateCourse(ctx context.Context, c *Course) error {
	if _, err := s.GetCourse(ctx, c.ID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Model(&Course{ID: c.ID}).
		Updates(map[string]any{"name": c.Name, "description": c.Description}).Error
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	return nil
}

// DeleteCourse removes a course. Courses that still have teachers or
// students are refused with ErrCourseInUse.
func (s *Store) DeleteCourse(ctx context.Context, id uint) error {
	if _, err := s.GetCourse(ctx, id); err != nil {
		return err
	}

	var teachers, students int64
	if err := s.db.WithContext(ctx).Model(&Teacher{}).Where("course_id = ?", id).Count(&teachers).Error; err != nil {
		return fmt.Errorf("failed to count teachers: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&Student{}).Where("course_id = ?", id).Count(&students).Error; err != nil {
		return fmt.Errorf("failed to count students: %w", err)
	}
	if teachers > 0 || students > 0 {
		return ErrCourseInUse
	}

	if err := s.db.WithContext(ctx).Delete(&Course{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	return nil
}

// --- helpers ---

func (s *Store) checkCourseExists(ctx context.Context, id uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Course{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check course: %w", err)
	}
	if count == 0 {
		return common.ErrForeignKey
	}
	return nil
}

// checkEmailFree verifies that email is unused by any record of model other
// than the one with id exceptID (0 for creates).
func (s *Store) checkEmailFree(ctx context.Context, model any, email string, exceptID uint) error {
	var count int64
	q := s.db.WithContext(ctx).Model(model).Where("email = ?", email)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return common.ErrDuplicate
	}
	return nil
}
