package retention

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"tabular-hq/verdict/pkg/execution"
	"tabular-hq/verdict/pkg/execution/export"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to retain execution records.
	// 0 means keep records forever (no age-based pruning).
	RetentionDays int

	// PruneSchedule is a cron expression for scheduling pruning.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string

	// ArchiveBeforeDelete enables archiving records before deletion.
	ArchiveBeforeDelete bool

	// ArchivePath is the directory to store archived records.
	ArchivePath string

	// MaxRecords is the maximum number of records to keep.
	// 0 means unlimited.
	MaxRecords int64
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays:       90,
		PruneSchedule:       "0 3 * * *",
		ArchiveBeforeDelete: false,
		ArchivePath:         "data/archives/",
		MaxRecords:          0,
	}
}

// Pruner enforces retention policies on execution records.
type Pruner struct {
	storage   execution.Storage
	config    *Config
	logger    *slog.Logger
	scheduler *Scheduler
}

// NewPruner creates a new retention pruner.
func NewPruner(storage execution.Storage, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}

	pruner := &Pruner{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "execution.retention"),
	}
	pruner.scheduler = NewScheduler(pruner)

	return pruner
}

// Prune deletes execution records older than the retention period or
// exceeding the max record count.
//
// Pruning happens in two phases:
//  1. Age-based: delete records older than RetentionDays
//  2. Count-based: if total records > MaxRecords, delete oldest
//
// Both can run together. Returns the total number of records deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var totalDeleted int64

	if p.config.RetentionDays > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by age failed: %w", err)
		}
		totalDeleted += deleted
		p.logger.Info("pruned records by age",
			"deleted_count", deleted,
			"retention_days", p.config.RetentionDays,
		)
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by count failed: %w", err)
		}
		totalDeleted += deleted
		p.logger.Info("pruned records by count",
			"deleted_count", deleted,
			"max_records", p.config.MaxRecords,
		)
	}

	if totalDeleted == 0 {
		p.logger.Debug("no records pruned",
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	} else {
		p.logger.Info("execution history pruning completed",
			"total_deleted", totalDeleted,
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	}

	return totalDeleted, nil
}

// pruneByAge deletes records older than the retention period.
func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)

	p.logger.Debug("pruning by age",
		"cutoff_time", cutoff,
		"retention_days", p.config.RetentionDays,
	)

	query := &execution.Query{EndTime: &cutoff}

	if p.config.ArchiveBeforeDelete {
		records, err := p.queryAll(ctx, query)
		if err != nil {
			return 0, execution.NewRetentionError(p.config.RetentionDays, err)
		}
		if err := p.archiveRecords(ctx, records, "age"); err != nil {
			return 0, execution.NewRetentionError(p.config.RetentionDays, err)
		}
	}

	deleted, err := p.storage.Delete(ctx, query)
	if err != nil {
		return 0, execution.NewRetentionError(p.config.RetentionDays, err)
	}

	return deleted, nil
}

// pruneByCount deletes the oldest records when the total count exceeds
// MaxRecords. The store returns records newest first, so the tail of a
// full query holds the deletion candidates.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	total, err := p.storage.Count(ctx, &execution.Query{})
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}

	if total <= p.config.MaxRecords {
		p.logger.Debug("record count within limit",
			"current", total,
			"max", p.config.MaxRecords,
		)
		return 0, nil
	}

	p.logger.Info("record count exceeds limit, pruning oldest",
		"current_count", total,
		"max_records", p.config.MaxRecords,
		"to_delete", total-p.config.MaxRecords,
	)

	allRecords, err := p.queryAll(ctx, &execution.Query{})
	if err != nil {
		return 0, fmt.Errorf("failed to query records: %w", err)
	}

	toDelete := len(allRecords) - int(p.config.MaxRecords)
	if toDelete <= 0 {
		p.logger.Debug("record count within limit after query")
		return 0, nil
	}

	// Newest first: the last toDelete records are the oldest. The cutoff
	// is the newest CreateTime among them; ties at that instant go too.
	victims := allRecords[len(allRecords)-toDelete:]
	cutoff := victims[0].CreateTime

	p.logger.Debug("calculated cutoff time for count-based pruning",
		"cutoff_time", cutoff,
		"records_to_delete", toDelete,
	)

	if p.config.ArchiveBeforeDelete {
		if err := p.archiveRecords(ctx, victims, "count"); err != nil {
			return 0, fmt.Errorf("archive failed: %w", err)
		}
	}

	deleted, err := p.storage.Delete(ctx, &execution.Query{EndTime: &cutoff})
	if err != nil {
		return 0, fmt.Errorf("delete failed: %w", err)
	}

	return deleted, nil
}

// queryAll fetches every record matching the filters, ignoring pagination.
func (p *Pruner) queryAll(ctx context.Context, query *execution.Query) ([]*execution.Record, error) {
	total, err := p.storage.Count(ctx, query)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, nil
	}

	full := *query
	full.Page = 1
	full.Size = int(total)
	records, _, err := p.storage.Query(ctx, &full)
	return records, err
}

// archiveRecords exports records to a JSON archive file before deletion.
func (p *Pruner) archiveRecords(ctx context.Context, records []*execution.Record, reason string) error {
	if len(records) == 0 {
		p.logger.Debug("no records to archive")
		return nil
	}

	p.logger.Info("archiving execution records before deletion",
		"record_count", len(records),
		"reason", reason,
	)

	if err := os.MkdirAll(p.config.ArchivePath, 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	archiveFile := filepath.Join(p.config.ArchivePath,
		fmt.Sprintf("executions-%s-%s.json", reason, time.Now().Format("2006-01-02-150405")))
	f, err := os.Create(archiveFile)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer f.Close()

	exporter := export.NewJSONExporter(true)
	if err := exporter.Export(ctx, records, f); err != nil {
		return fmt.Errorf("failed to export records to archive: %w", err)
	}

	p.logger.Info("execution records archived",
		"archive_file", archiveFile,
		"record_count", len(records),
	)

	return nil
}

// Start starts the automatic pruning scheduler.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the automatic pruning scheduler.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled pruning.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
