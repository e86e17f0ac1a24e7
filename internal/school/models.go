// Package school implements the school management app: courses, teachers
// and students with one-to-many relationships, backed by GORM.
package school

// Course is taught by many teachers and taken by many students.
type Course struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null"`
	Description string `gorm:"type:text"`
	Teachers    []Teacher
	Students    []Student
}

// Teacher teaches exactly one course.
type Teacher struct {
	ID       uint   `gorm:"primaryKey"`
	Name     string `gorm:"size:100;not null"`
	Email    string `gorm:"size:120;uniqueIndex;not null"`
	CourseID uint   `gorm:"not null"`
	Course   Course
}

// Student is enrolled in exactly one course.
type Student struct {
	ID       uint   `gorm:"primaryKey"`
	Name     string `gorm:"size:100;not null"`
	Email    string `gorm:"size:120;uniqueIndex;not null"`
	CourseID uint   `gorm:"not null"`
	Course   Course
}
