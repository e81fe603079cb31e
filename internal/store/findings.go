package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/foundme/foundme/internal/model"
)

// InsertFinding persists a single finding.
func (s *Store) InsertFinding(ctx context.Context, finding *model.Finding) error {
	return s.InsertFindings(ctx, []*model.Finding{finding})
}

// InsertFindings persists a batch of findings in a single transaction.
// The batch is all-or-nothing: if any insert fails, none are persisted.
// Different sessions may insert concurrently; within one session, writes
// are append-only and duplicates are not rejected (duplicate tool output
// simply yields two findings for the correlation engine to relate).
func (s *Store) InsertFindings(ctx context.Context, findings []*model.Finding) error {
	if len(findings) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	query := `
	INSERT INTO findings (id, session_id, target, target_category, tool, category, evidence, confidence, source_url, discovered_at, verified, tags)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, f := range findings {
		evidenceJSON, err := json.Marshal(f.Evidence)
		if err != nil {
			return fmt.Errorf("failed to serialize evidence: %w", err)
		}
		tagsJSON, err := json.Marshal(f.Tags)
		if err != nil {
			return fmt.Errorf("failed to serialize tags: %w", err)
		}

		_, err = tx.ExecContext(ctx, query,
			f.ID,
			f.SessionID,
			f.Target,
			f.TargetCategory.String(),
			f.Tool,
			f.Category.String(),
			string(evidenceJSON),
			model.ClampScore(f.Confidence),
			f.SourceURL,
			formatTime(f.DiscoveredAt),
			f.Verified,
			string(tagsJSON),
		)
		if err != nil {
			return fmt.Errorf("failed to insert finding: %w", err)
		}
	}

	return tx.Commit()
}

// GetFinding retrieves a finding by id.
// Returns ErrFindingNotFound if no finding exists.
func (s *Store) GetFinding(ctx context.Context, id string) (*model.Finding, error) {
	query := findingSelect + " WHERE id = ?"

	row := s.db.QueryRowContext(ctx, query, id)
	finding, err := scanFinding(row)
	if err == sql.ErrNoRows {
		return nil, ErrFindingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get finding: %w", err)
	}

	return finding, nil
}

// ReviewFinding updates the verification flag and tag set of a finding.
// This is the only mutation path for persisted findings.
func (s *Store) ReviewFinding(ctx context.Context, id string, verified bool, tags []string) error {
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to serialize tags: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE findings SET verified = ?, tags = ? WHERE id = ?",
		verified, string(tagsJSON), id)
	if err != nil {
		return fmt.Errorf("failed to update finding review: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrFindingNotFound
	}

	return nil
}

// Filter selects findings in SearchFindings. All set fields are combined
// with AND; zero values mean "no constraint".
type Filter struct {
	// SessionID restricts results to one session.
	SessionID string

	// Target restricts results to one identifier.
	Target string

	// TargetCategory restricts results to one identifier category.
	TargetCategory model.TargetCategory

	// Tool restricts results to one producing tool.
	Tool string

	// Category restricts results to one finding category.
	Category model.FindingCategory

	// MinConfidence and MaxConfidence bound the confidence range.
	// MaxConfidence of 0 means unbounded above.
	MinConfidence float64
	MaxConfidence float64

	// Verified filters on the verification flag when non-nil.
	Verified *bool

	// Tags requires every listed tag to be present.
	Tags []string

	// Since and Until bound the discovery time range.
	Since time.Time
	Until time.Time

	// Limit and Offset paginate results. Limit of 0 means no limit.
	Limit  int
	Offset int
}

// findingSelect is the shared column list for finding queries.
const findingSelect = `
	SELECT id, session_id, target, target_category, tool, category, evidence, confidence, source_url, discovered_at, verified, tags
	FROM findings`

// SearchFindings returns findings matching the filter, newest first.
//
// Tag filtering happens in Go after the SQL scan: tags are stored as a JSON
// array and SQLite substring matching against JSON would produce false
// positives for tags that are prefixes of other tags.
func (s *Store) SearchFindings(ctx context.Context, filter Filter) ([]*model.Finding, error) {
	query := findingSelect + " WHERE 1=1"
	args := make([]any, 0, 8)

	if filter.SessionID != "" {
		query += " AND session_id = ?"
		args = append(args, filter.SessionID)
	}
	if filter.Target != "" {
		query += " AND target = ?"
		args = append(args, filter.Target)
	}
	if filter.TargetCategory != "" {
		query += " AND target_category = ?"
		args = append(args, filter.TargetCategory.String())
	}
	if filter.Tool != "" {
		query += " AND tool = ?"
		args = append(args, filter.Tool)
	}
	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category.String())
	}
	if filter.MinConfidence > 0 {
		query += " AND confidence >= ?"
		args = append(args, filter.MinConfidence)
	}
	if filter.MaxConfidence > 0 {
		query += " AND confidence <= ?"
		args = append(args, filter.MaxConfidence)
	}
	if filter.Verified != nil {
		query += " AND verified = ?"
		args = append(args, *filter.Verified)
	}
	if !filter.Since.IsZero() {
		query += " AND discovered_at >= ?"
		args = append(args, formatTime(filter.Since))
	}
	if !filter.Until.IsZero() {
		query += " AND discovered_at <= ?"
		args = append(args, formatTime(filter.Until))
	}

	query += " ORDER BY discovered_at DESC"
	if filter.Limit > 0 && len(filter.Tags) == 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search findings: %w", err)
	}
	defer rows.Close()

	var findings []*model.Finding
	for rows.Next() {
		finding, err := scanFinding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		if !hasAllTags(finding, filter.Tags) {
			continue
		}
		findings = append(findings, finding)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Apply pagination after tag filtering when tags are involved.
	if len(filter.Tags) > 0 && filter.Limit > 0 {
		if filter.Offset >= len(findings) {
			return nil, nil
		}
		findings = findings[filter.Offset:]
		if len(findings) > filter.Limit {
			findings = findings[:filter.Limit]
		}
	}

	return findings, nil
}

// FindingsByTarget returns every finding for an identifier across all
// sessions, oldest first. Category may be empty to match all categories.
// This is the read path of the correlation engine.
func (s *Store) FindingsByTarget(ctx context.Context, target string, category model.TargetCategory) ([]*model.Finding, error) {
	query := findingSelect + " WHERE target = ?"
	args := []any{target}

	if category != "" {
		query += " AND target_category = ?"
		args = append(args, category.String())
	}
	query += " ORDER BY discovered_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings by target: %w", err)
	}
	defer rows.Close()

	var findings []*model.Finding
	for rows.Next() {
		finding, err := scanFinding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		findings = append(findings, finding)
	}

	return findings, rows.Err()
}

// CountFindings returns the number of findings belonging to a session.
func (s *Store) CountFindings(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM findings WHERE session_id = ?", sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count findings: %w", err)
	}
	return count, nil
}

// TargetStats contains aggregate statistics for one target identifier.
type TargetStats struct {
	// Target is the identifier the statistics cover.
	Target string

	// Total is the number of findings across all sessions.
	Total int

	// ByCategory is the finding count per category.
	ByCategory map[model.FindingCategory]int

	// AverageConfidence is the mean confidence across all findings.
	// Zero when no findings exist.
	AverageConfidence float64
}

// Stats computes aggregate statistics for a target identifier.
func (s *Store) Stats(ctx context.Context, target string) (*TargetStats, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT category, COUNT(*), AVG(confidence) FROM findings WHERE target = ? GROUP BY category", target)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	stats := &TargetStats{
		Target:     target,
		ByCategory: make(map[model.FindingCategory]int),
	}

	var confidenceSum float64
	for rows.Next() {
		var (
			category string
			count    int
			avg      float64
		)
		if err := rows.Scan(&category, &count, &avg); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		stats.ByCategory[model.FindingCategory(category)] = count
		stats.Total += count
		confidenceSum += avg * float64(count)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if stats.Total > 0 {
		stats.AverageConfidence = confidenceSum / float64(stats.Total)
	}

	return stats, nil
}

// scanFinding reads one finding row.
func scanFinding(row rowScanner) (*model.Finding, error) {
	var (
		finding        model.Finding
		targetCategory string
		category       string
		evidenceJSON   string
		discoveredAt   string
		sourceURL      sql.NullString
		tagsJSON       sql.NullString
	)

	err := row.Scan(
		&finding.ID,
		&finding.SessionID,
		&finding.Target,
		&targetCategory,
		&finding.Tool,
		&category,
		&evidenceJSON,
		&finding.Confidence,
		&sourceURL,
		&discoveredAt,
		&finding.Verified,
		&tagsJSON,
	)
	if err != nil {
		return nil, err
	}

	finding.TargetCategory = model.TargetCategory(targetCategory)
	finding.Category = model.FindingCategory(category)
	finding.DiscoveredAt = parseTimestamp(discoveredAt)
	if sourceURL.Valid {
		finding.SourceURL = sourceURL.String
	}

	if err := json.Unmarshal([]byte(evidenceJSON), &finding.Evidence); err != nil {
		return nil, fmt.Errorf("failed to parse evidence: %w", err)
	}
	if tagsJSON.Valid && tagsJSON.String != "" && tagsJSON.String != "null" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &finding.Tags); err != nil {
			return nil, fmt.Errorf("failed to parse tags: %w", err)
		}
	}

	return &finding, nil
}

// hasAllTags reports whether the finding carries every required tag.
func hasAllTags(f *model.Finding, required []string) bool {
	for _, tag := range required {
		if !f.HasTag(strings.TrimSpace(tag)) {
			return false
		}
	}
	return true
}
