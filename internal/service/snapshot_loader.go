package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rajpratham1/EduScheduler-sub001/internal/models"
	"github.com/rajpratham1/EduScheduler-sub001/internal/repository"
)

// ScheduleSnapshot is the institution state rendered into assistant prompts.
type ScheduleSnapshot struct {
	Entries      []models.ScheduleEntry
	Faculty      []models.Faculty
	Classrooms   []models.Classroom
	StudentCount int64
}

// ActiveEntries returns the entries that currently occupy slots.
func (s ScheduleSnapshot) ActiveEntries() []models.ScheduleEntry {
	active := make([]models.ScheduleEntry, 0, len(s.Entries))
	for _, entry := range s.Entries {
		if entry.IsActive() {
			active = append(active, entry)
		}
	}
	return active
}

// SnapshotLoader assembles a consistent read of the schedule and its
// supporting catalogues.
type SnapshotLoader interface {
	Load(ctx context.Context) (ScheduleSnapshot, error)
}

type snapshotLoader struct {
	schedules  repository.ScheduleRepository
	faculty    repository.FacultyRepository
	classrooms repository.ClassroomRepository
	students   repository.StudentRepository
	logger     zerolog.Logger
}

// NewSnapshotLoader creates a snapshot loader over the given repositories.
func NewSnapshotLoader(
	schedules repository.ScheduleRepository,
	faculty repository.FacultyRepository,
	classrooms repository.ClassroomRepository,
	students repository.StudentRepository,
	logger zerolog.Logger,
) SnapshotLoader {
	return &snapshotLoader{
		schedules:  schedules,
		faculty:    faculty,
		classrooms: classrooms,
		students:   students,
		logger:     logger.With().Str("component", "snapshot_loader").Logger(),
	}
}

func (l *snapshotLoader) Load(ctx context.Context) (ScheduleSnapshot, error) {
	entries, err := l.schedules.ListAll(ctx)
	if err != nil {
		return ScheduleSnapshot{}, err
	}

	faculty, err := l.faculty.ListAll(ctx)
	if err != nil {
		return ScheduleSnapshot{}, err
	}

	classrooms, err := l.classrooms.ListAll(ctx)
	if err != nil {
		return ScheduleSnapshot{}, err
	}

	studentCount, err := l.students.Count(ctx)
	if err != nil {
		return ScheduleSnapshot{}, err
	}

	snapshot := ScheduleSnapshot{
		Entries:      entries,
		Faculty:      faculty,
		Classrooms:   classrooms,
		StudentCount: studentCount,
	}

	l.logger.Debug().
		Int("entries", len(entries)).
		Int("faculty", len(faculty)).
		Int("classrooms", len(classrooms)).
		Int64("students", studentCount).
		Msg("schedule snapshot loaded")

	return snapshot, nil
}
