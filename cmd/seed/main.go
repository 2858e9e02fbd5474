package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"memoir/internal/notes"
	"memoir/internal/people"
	"memoir/internal/shared/config"
	"memoir/internal/shared/database"
	"memoir/internal/tags"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Memoir Database Seeder...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	// Clean database
	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	// Seed data
	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready.")
}

// CleanDatabase truncates all tables in the correct order (respecting foreign key constraints)
func (s *Seeder) CleanDatabase() error {
	// Delete in reverse dependency order
	tables := []string{
		"note_people",
		"note_tags",
		"notes",
		"person_tags",
		"people",
		"tags",
		"users",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit().Error
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	// Seed the owner account first
	if err := s.SeedOwner(); err != nil {
		return fmt.Errorf("failed to seed owner: %w", err)
	}

	// Seed tags (types, workouts, person tags)
	tagIDs, err := s.SeedTags()
	if err != nil {
		return fmt.Errorf("failed to seed tags: %w", err)
	}

	// Seed people
	personIDs, err := s.SeedPeople(tagIDs)
	if err != nil {
		return fmt.Errorf("failed to seed people: %w", err)
	}

	// Seed notes
	if err := s.SeedNotes(tagIDs, personIDs); err != nil {
		return fmt.Errorf("failed to seed notes: %w", err)
	}

	// Clear Redis cache to ensure fresh state
	if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
		log.Printf("Warning: Failed to clear Redis cache: %v", err)
	}

	return nil
}

// SeedOwner creates the single owner account
func (s *Seeder) SeedOwner() error {
	fmt.Println("  👤 Seeding owner account...")

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("changeme123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.PostgreSQL.Exec(
		"INSERT INTO users (id, email, password, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		uuid.New(), "owner@memoir.local", string(hashedPassword), time.Now(), time.Now(),
	).Error; err != nil {
		return fmt.Errorf("failed to create owner: %w", err)
	}

	fmt.Println("    ✅ Created owner: owner@memoir.local")
	return nil
}

// SeedTags creates the note type tags plus a starter set of workout,
// person, and general-purpose tags.
func (s *Seeder) SeedTags() (map[string]uuid.UUID, error) {
	fmt.Println("  🏷️ Seeding tags...")

	tagIDs := make(map[string]uuid.UUID)

	tagsData := []struct {
		name        string
		description string
		isType      bool
		isTag       bool
		isWorkout   bool
		isPerson    bool
	}{
		// Note types
		{notes.VariantLife, "General life events", true, false, false, false},
		{notes.VariantHealth, "Health and medical records", true, false, false, false},
		{notes.VariantBikeRide, "Cycling activities", true, false, false, false},
		{notes.VariantHike, "Hiking activities", true, false, false, false},
		{notes.VariantBook, "Reading log", true, false, false, false},
		{notes.VariantWorkout, "Exercise sessions", true, false, false, false},

		// Workout kinds
		{"Running", "Road and trail runs", false, false, true, false},
		{"Strength", "Weight training sessions", false, false, true, false},
		{"Yoga", "Yoga and stretching", false, false, true, false},

		// Person tags
		{"Family", "Immediate and extended family", false, true, false, true},
		{"Friend", "", false, true, false, true},
		{"Coworker", "", false, false, false, true},

		// General-purpose note tags
		{"Travel", "Trips and vacations", false, true, false, false},
		{"Milestone", "Firsts and anniversaries", false, true, false, false},
	}

	for _, tagData := range tagsData {
		tag := tags.Tag{
			ID:          uuid.New(),
			Name:        tagData.name,
			Description: tagData.description,
			IsType:      tagData.isType,
			IsTag:       tagData.isTag,
			IsWorkout:   tagData.isWorkout,
			IsPerson:    tagData.isPerson,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&tag).Error; err != nil {
			return nil, fmt.Errorf("failed to create tag %s: %w", tag.Name, err)
		}

		tagIDs[tag.Name] = tag.ID
		fmt.Printf("    ✅ Created tag: %s\n", tag.Name)
	}

	return tagIDs, nil
}

// SeedPeople creates sample people with tag associations
func (s *Seeder) SeedPeople(tagIDs map[string]uuid.UUID) (map[string]uuid.UUID, error) {
	fmt.Println("  🧑 Seeding people...")

	personIDs := make(map[string]uuid.UUID)

	peopleData := []struct {
		firstName  string
		middleName string
		lastName   string
		preferred  string
		birthdate  string
		tagNames   []string
	}{
		{"Alice", "", "Hartley", "Al", "1987-03-14", []string{"Family"}},
		{"Ben", "", "Okafor", "", "1990-11-02", []string{"Friend"}},
		{"Carol", "Jean", "Nguyen", "", "", []string{"Coworker"}},
	}

	for _, personData := range peopleData {
		person := people.Person{
			ID:            uuid.New(),
			FirstName:     personData.firstName,
			MiddleName:    personData.middleName,
			LastName:      personData.lastName,
			PreferredName: personData.preferred,
			Birthdate:     personData.birthdate,
			Notes:         []people.PersonNote{},
			Photos:        []people.PersonPhoto{},
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&person).Error; err != nil {
			return nil, fmt.Errorf("failed to create person %s: %w", person.DisplayName(), err)
		}

		for _, tagName := range personData.tagNames {
			tagID, ok := tagIDs[tagName]
			if !ok {
				continue
			}
			personTag := people.PersonTag{
				ID:        uuid.New(),
				PersonID:  person.ID,
				TagID:     tagID,
				CreatedAt: time.Now(),
			}
			if err := s.db.PostgreSQL.Create(&personTag).Error; err != nil {
				return nil, fmt.Errorf("failed to tag person %s: %w", person.DisplayName(), err)
			}
		}

		personIDs[person.DisplayName()] = person.ID
		fmt.Printf("    ✅ Created person: %s\n", person.DisplayName())
	}

	return personIDs, nil
}

// SeedNotes creates one sample note per variant
func (s *Seeder) SeedNotes(tagIDs map[string]uuid.UUID, personIDs map[string]uuid.UUID) error {
	fmt.Println("  📝 Seeding notes...")

	distance := 42.3
	rating := 8

	notesData := []struct {
		variant    string
		date       string
		title      string
		place      string
		fields     notes.VariantFields
		tagNames   []string
		peopleKeys []string
		workout    string
	}{
		{
			variant: notes.VariantLife,
			date:    "2026-06-01",
			title:   "Moved into the new apartment",
			place:   "Portland, OR",
			fields:  notes.VariantFields{},
			tagNames: []string{
				"Milestone",
			},
			peopleKeys: []string{"Alice Hartley"},
		},
		{
			variant: notes.VariantHealth,
			date:    "2026-06-15",
			title:   "Annual physical",
			place:   "Eastside Clinic",
			fields:  notes.VariantFields{},
		},
		{
			variant: notes.VariantBikeRide,
			date:    "2026-07-04",
			title:   "Holiday loop around the river",
			place:   "Springwater Corridor",
			fields: notes.VariantFields{
				BikeRide: &notes.BikeRideFields{
					Bike: "Trek 520",
					Metrics: []notes.RideMetrics{
						{DataSource: "Strava", Distance: &distance, ElevationGain: "512"},
					},
				},
			},
			peopleKeys: []string{"Ben Okafor"},
		},
		{
			variant: notes.VariantHike,
			date:    "2026-07-18",
			title:   "Angels Rest at sunrise",
			place:   "Columbia River Gorge",
			fields: notes.VariantFields{
				Hike: &notes.HikeFields{
					Metrics: []notes.RideMetrics{
						{DataSource: "Manual", Distance: &distance},
					},
				},
			},
			tagNames: []string{"Travel"},
		},
		{
			variant: notes.VariantBook,
			date:    "2026-08-02",
			title:   "Finished The Overstory",
			place:   "",
			fields: notes.VariantFields{
				Book: &notes.BookFields{
					Authors: []string{"Richard Powers"},
					Format:  "Book",
					Status:  "Completed",
					Rating:  &rating,
				},
			},
		},
		{
			variant: notes.VariantWorkout,
			date:    "2026-08-10",
			title:   "Morning intervals",
			place:   "Duniway Track",
			fields: notes.VariantFields{
				Workout: &notes.WorkoutFields{
					Metrics: []notes.WorkoutMetric{
						{Property: "sets", Value: 6.0},
						{Property: "felt strong", Value: true},
					},
				},
			},
			workout: "Running",
		},
	}

	for _, noteData := range notesData {
		typeTagID, ok := tagIDs[noteData.variant]
		if !ok {
			return fmt.Errorf("missing type tag %s", noteData.variant)
		}

		note := notes.Note{
			ID:        uuid.New(),
			Variant:   noteData.variant,
			TypeTagID: typeTagID,
			Date:      noteData.date,
			Title:     noteData.title,
			Place:     noteData.place,
			Fields:    noteData.fields,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		if noteData.workout != "" {
			workoutTagID, ok := tagIDs[noteData.workout]
			if !ok {
				return fmt.Errorf("missing workout tag %s", noteData.workout)
			}
			note.WorkoutTagID = &workoutTagID
		}

		if err := s.db.PostgreSQL.Create(&note).Error; err != nil {
			return fmt.Errorf("failed to create note %s: %w", note.Title, err)
		}

		for _, tagName := range noteData.tagNames {
			tagID, ok := tagIDs[tagName]
			if !ok {
				continue
			}
			noteTag := notes.NoteTag{
				ID:        uuid.New(),
				NoteID:    note.ID,
				TagID:     tagID,
				CreatedAt: time.Now(),
			}
			if err := s.db.PostgreSQL.Create(&noteTag).Error; err != nil {
				return fmt.Errorf("failed to tag note %s: %w", note.Title, err)
			}
		}

		for _, personKey := range noteData.peopleKeys {
			personID, ok := personIDs[personKey]
			if !ok {
				continue
			}
			notePerson := notes.NotePerson{
				ID:        uuid.New(),
				NoteID:    note.ID,
				PersonID:  personID,
				CreatedAt: time.Now(),
			}
			if err := s.db.PostgreSQL.Create(&notePerson).Error; err != nil {
				return fmt.Errorf("failed to link person to note %s: %w", note.Title, err)
			}
		}

		fmt.Printf("    ✅ Created note: %s (%s)\n", note.Title, note.Variant)
	}

	return nil
}
