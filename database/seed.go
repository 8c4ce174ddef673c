package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/campusshare/api/model"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("Starting database seeding...")

	// Run seeds in order (subjects reference departments and semesters)
	if err := s.SeedDepartments(); err != nil {
		return fmt.Errorf("failed to seed departments: %w", err)
	}

	if err := s.SeedSemesters(); err != nil {
		return fmt.Errorf("failed to seed semesters: %w", err)
	}

	if err := s.SeedSubjects(); err != nil {
		return fmt.Errorf("failed to seed subjects: %w", err)
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedDepartments creates the default department catalog
func (s *Seeder) SeedDepartments() error {
	departments := []string{"Computer Science", "Mechanical", "Electrical"}
	for _, name := range departments {
		var count int64
		s.db.Model(&model.Department{}).Where("name = ?", name).Count(&count)
		if count > 0 {
			continue
		}
		if err := s.db.Create(&model.Department{Name: name}).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedSemesters creates the default semester catalog
func (s *Seeder) SeedSemesters() error {
	for i := 1; i <= 8; i++ {
		name := fmt.Sprintf("Semester %d", i)
		var count int64
		s.db.Model(&model.Semester{}).Where("name = ?", name).Count(&count)
		if count > 0 {
			continue
		}
		if err := s.db.Create(&model.Semester{Name: name}).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedSubjects creates a sample subject catalog keyed to the seeded
// department/semester pairs
func (s *Seeder) SeedSubjects() error {
	subjects := []struct {
		Name       string
		Department string
		Semester   string
	}{
		{"Mathematics", "Computer Science", "Semester 1"},
		{"Programming", "Computer Science", "Semester 1"},
		{"Data Structures", "Computer Science", "Semester 2"},
		{"Thermodynamics", "Mechanical", "Semester 2"},
		{"Circuits", "Electrical", "Semester 3"},
	}

	for _, entry := range subjects {
		var department model.Department
		if err := s.db.Where("name = ?", entry.Department).First(&department).Error; err != nil {
			return err
		}
		var semester model.Semester
		if err := s.db.Where("name = ?", entry.Semester).First(&semester).Error; err != nil {
			return err
		}

		var count int64
		s.db.Model(&model.Subject{}).
			Where("name = ? AND department_id = ? AND semester_id = ?", entry.Name, department.ID, semester.ID).
			Count(&count)
		if count > 0 {
			continue
		}

		subject := model.Subject{
			Name:         entry.Name,
			DepartmentID: department.ID,
			SemesterID:   semester.ID,
		}
		if err := s.db.Create(&subject).Error; err != nil {
			return err
		}
	}
	return nil
}

// RunSeeds is the entrypoint used by cmd/seed
func RunSeeds(db *gorm.DB) error {
	return NewSeeder(db).SeedAll()
}
