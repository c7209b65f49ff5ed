package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/okx/batchtransfer/transfer"
)

// Reporter turns outcomes into user feedback: one log line per recipient,
// plus optional report and failed-entry files.
type Reporter struct {
	log    log.Logger
	report io.Writer
	failed io.Writer

	closers []io.Closer

	total     int
	succeeded int
}

// NewReporter writes to report and failed when they are non-nil.
func NewReporter(logger log.Logger, runID string, report, failed io.Writer) *Reporter {
	r := &Reporter{
		log:    logger,
		report: report,
		failed: failed,
	}
	r.write(r.report, "# run=%s started=%s\n", runID, time.Now().UTC().Format(time.RFC3339))
	r.write(r.report, "# index\tstatus\tfrom\tto\tamount_eth\thash_or_kind\tmessage\n")
	r.write(r.failed, "# failed transfers of run %s\n", runID)
	return r
}

// OpenReporter creates (truncating) the files at reportPath and failedPath.
// Empty paths disable the corresponding output.
func OpenReporter(logger log.Logger, runID, reportPath, failedPath string) (*Reporter, error) {
	var files []*os.File
	open := func(path string) (io.Writer, error) {
		if path == "" {
			return nil, nil
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		files = append(files, f)
		return f, nil
	}

	report, err := open(reportPath)
	if err != nil {
		return nil, err
	}
	failed, err := open(failedPath)
	if err != nil {
		for _, f := range files {
			f.Close()
		}
		return nil, err
	}

	r := NewReporter(logger, runID, report, failed)
	for _, f := range files {
		r.closers = append(r.closers, f)
	}
	if reportPath != "" {
		logger.Info("Report file enabled", "path", reportPath)
	}
	return r, nil
}

// Record handles one outcome. It matches the transfer.WithReporter signature.
func (r *Reporter) Record(o transfer.Outcome) {
	r.total++
	amount := FormatEther(o.Recipient.Amount)

	if o.Succeeded() {
		r.succeeded++
		r.log.Info("Transfer succeeded", "index", o.Index, "from", o.From, "to", o.Recipient.Address,
			"amount", amount, "hash", o.Hash)
		r.write(r.report, "%d\tok\t%s\t%s\t%s\t%s\t\n", o.Index, o.From.Hex(), o.Recipient.Address, amount, o.Hash.Hex())
		return
	}

	kind, stage, msg := "unknown", "", ""
	if o.Err != nil {
		kind, stage, msg = o.Err.Kind.String(), o.Err.Stage.String(), o.Err.Err.Error()
	}
	r.log.Error("Transfer failed", "index", o.Index, "from", o.From, "to", o.Recipient.Address,
		"amount", amount, "kind", kind, "stage", stage, "err", msg)
	r.write(r.report, "%d\tfailed\t%s\t%s\t%s\t%s\t%s\n", o.Index, o.From.Hex(), o.Recipient.Address, amount, kind, reportField(msg))
	r.write(r.failed, "%s %s\n", o.Recipient.Address, amount)
}

// Summary returns the number of recorded, succeeded and failed outcomes.
func (r *Reporter) Summary() (total, succeeded, failed int) {
	return r.total, r.succeeded, r.total - r.succeeded
}

func (r *Reporter) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.closers = nil
	return firstErr
}

// reportField keeps a node error on a single report row. HTTP errors carry
// the response body, which may span lines.
var reportField = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace

func (r *Reporter) write(w io.Writer, format string, args ...interface{}) {
	if w == nil {
		return
	}
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		r.log.Warn("Failed to write report", "err", err)
	}
}
