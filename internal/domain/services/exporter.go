package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quizhub/curator/internal/domain/entities"
	"github.com/quizhub/curator/internal/domain/ports"
)

// Rejection is one record excluded from a build, with the issues that
// excluded it. The rejection report is the contract the build tooling
// consumes to know what was filtered.
type Rejection struct {
	Ref    entities.ItemRef     `json:"item_ref"`
	Issues []entities.IssueKind `json:"issues"`
}

// ExportResult summarizes one build export.
type ExportResult struct {
	Channels  int         `json:"channels"`
	Exported  int         `json:"exported"`
	Rejected  []Rejection `json:"rejected"`
	OutputDir string      `json:"output_dir"`
}

// Exporter emits distributable bundles. The quality gate runs as the
// final publish-time check, so no malformed record can reach output
// even if the remediation queue is behind.
type Exporter struct {
	corpus ports.CorpusStore
	ledger ports.Ledger
	gate   *QualityGate
}

// NewExporter creates an exporter.
func NewExporter(corpus ports.CorpusStore, ledger ports.Ledger, gate *QualityGate) *Exporter {
	return &Exporter{
		corpus: corpus,
		ledger: ledger,
		gate:   gate,
	}
}

// Export writes one bundle per channel with only valid records, an
// aggregate bundle, the structured-test bundles, and the rejection
// report. The report is written even when nothing was rejected.
func (e *Exporter) Export(ctx context.Context, outDir string) (*ExportResult, error) {
	if err := os.MkdirAll(filepath.Join(outDir, "channels"), 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(outDir, "tests"), 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	channels, err := e.corpus.Channels(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing channels: %w", err)
	}

	result := &ExportResult{
		Rejected:  []Rejection{},
		OutputDir: outDir,
	}
	var aggregate []entities.ContentRecord

	for _, channelID := range channels {
		records, err := e.corpus.ListRecords(ctx, channelID)
		if err != nil {
			return nil, fmt.Errorf("listing records for channel %s: %w", channelID, err)
		}

		valid := make([]entities.ContentRecord, 0, len(records))
		for i := range records {
			res := e.gate.Validate(&records[i])
			if res.Valid {
				valid = append(valid, records[i])
				continue
			}
			result.Rejected = append(result.Rejected, Rejection{
				Ref:    records[i].Ref(),
				Issues: res.Issues,
			})
		}

		if err := writeBundle(filepath.Join(outDir, "channels", channelID+".json"), valid); err != nil {
			return nil, err
		}
		aggregate = append(aggregate, valid...)
		result.Exported += len(valid)
		result.Channels++

		tests, err := e.corpus.ListTestQuestions(ctx, channelID)
		if err != nil {
			return nil, fmt.Errorf("listing structured entries for channel %s: %w", channelID, err)
		}
		if len(tests) > 0 {
			if err := writeBundle(filepath.Join(outDir, "tests", channelID+".json"), tests); err != nil {
				return nil, err
			}
		}
	}

	if aggregate == nil {
		aggregate = []entities.ContentRecord{}
	}
	if err := writeBundle(filepath.Join(outDir, "all.json"), aggregate); err != nil {
		return nil, err
	}
	if err := writeBundle(filepath.Join(outDir, "rejected.json"), result.Rejected); err != nil {
		return nil, err
	}

	if err := e.recordSummary(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Exporter) recordSummary(ctx context.Context, result *ExportResult) error {
	after, err := json.Marshal(map[string]any{
		"channels": result.Channels,
		"exported": result.Exported,
		"rejected": len(result.Rejected),
	})
	if err != nil {
		return fmt.Errorf("marshaling export summary: %w", err)
	}
	entry := &entities.LedgerEntry{
		Actor:  entities.ActorExporter,
		Action: entities.LedgerActionExport,
		After:  string(after),
	}
	if err := e.ledger.Record(ctx, entry); err != nil {
		return fmt.Errorf("recording export summary: %w", err)
	}
	return nil
}

// writeBundle writes one JSON bundle file.
func writeBundle(path string, v any) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating bundle %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing bundle %s: %w", path, cerr)
		}
	}()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("writing bundle %s: %w", path, err)
	}
	return nil
}
