package service

import (
	"context"
	"sort"

	"github.com/utpal74/track-my-tasks-api/db"
	"github.com/utpal74/track-my-tasks-api/model"
)

// CompletedStatus marks a finished task in the statistics.
const CompletedStatus = "done"

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// CategoryStats aggregates tasks carrying one category label. CategoryID is
// nil for labels that have no matching category record.
type CategoryStats struct {
	CategoryID          *uint   `json:"category_id"`
	CategoryName        string  `json:"category_name"`
	TotalTasks          int     `json:"total_tasks"`
	CompletedTasks      int     `json:"completed_tasks"`
	TotalEstimatedHours float64 `json:"total_estimated_hours"`
	TotalActualHours    float64 `json:"total_actual_hours"`
}

type HoursStats struct {
	TotalEstimatedHours float64 `json:"total_estimated_hours"`
	TotalActualHours    float64 `json:"total_actual_hours"`
	AvgEstimatedHours   float64 `json:"avg_estimated_hours"`
	AvgActualHours      float64 `json:"avg_actual_hours"`
}

type Stats struct {
	TotalTasks    int             `json:"total_tasks"`
	TasksByStatus []StatusCount   `json:"tasks_by_status"`
	CategoryStats []CategoryStats `json:"category_stats"`
	HoursStats    HoursStats      `json:"hours_stats"`
}

// StatsService summarizes the acting user's tasks.
type StatsService struct {
	store db.Store
}

func NewStatsService(store db.Store) *StatsService {
	return &StatsService{store: store}
}

func (s *StatsService) Summary(ctx context.Context, user *model.User) (*Stats, error) {
	tasks, err := s.store.ListTasks(ctx, user.ID, model.TaskFilter{})
	if err != nil {
		return nil, err
	}
	categories, err := s.store.ListCategories(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalTasks:    len(tasks),
		TasksByStatus: make([]StatusCount, 0),
		CategoryStats: make([]CategoryStats, 0, len(categories)),
	}

	// Category records come first, in their stored order; labels without a
	// record follow alphabetically.
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		id := c.ID
		stats.CategoryStats = append(stats.CategoryStats, CategoryStats{CategoryID: &id, CategoryName: c.Name})
	}
	byName := make(map[string]*CategoryStats, len(stats.CategoryStats))
	for i := range stats.CategoryStats {
		byName[stats.CategoryStats[i].CategoryName] = &stats.CategoryStats[i]
	}

	statusCounts := make(map[string]int)
	var orphans []CategoryStats
	orphanIdx := make(map[string]int)
	var estimatedN, actualN int

	for _, t := range tasks {
		statusCounts[t.Status]++

		cs := byName[t.Category]
		if cs == nil {
			idx, ok := orphanIdx[t.Category]
			if !ok {
				idx = len(orphans)
				orphanIdx[t.Category] = idx
				orphans = append(orphans, CategoryStats{CategoryName: t.Category})
			}
			cs = &orphans[idx]
		}
		cs.TotalTasks++
		if t.Status == CompletedStatus {
			cs.CompletedTasks++
		}
		if t.EstimatedHours != nil {
			cs.TotalEstimatedHours += *t.EstimatedHours
			stats.HoursStats.TotalEstimatedHours += *t.EstimatedHours
			estimatedN++
		}
		if t.ActualHours != nil {
			cs.TotalActualHours += *t.ActualHours
			stats.HoursStats.TotalActualHours += *t.ActualHours
			actualN++
		}
	}

	sort.Slice(orphans, func(i, j int) bool { return orphans[i].CategoryName < orphans[j].CategoryName })
	stats.CategoryStats = append(stats.CategoryStats, orphans...)

	for status, n := range statusCounts {
		stats.TasksByStatus = append(stats.TasksByStatus, StatusCount{Status: status, Count: n})
	}
	sort.Slice(stats.TasksByStatus, func(i, j int) bool {
		return stats.TasksByStatus[i].Status < stats.TasksByStatus[j].Status
	})

	if estimatedN > 0 {
		stats.HoursStats.AvgEstimatedHours = stats.HoursStats.TotalEstimatedHours / float64(estimatedN)
	}
	if actualN > 0 {
		stats.HoursStats.AvgActualHours = stats.HoursStats.TotalActualHours / float64(actualN)
	}
	return stats, nil
}
