package reports

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/stockroom-backend/internal/inventorylog"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
)

// Document is a rendered report ready to be streamed.
type Document struct {
	Filename string
	Content  []byte
}

// Service renders downloadable ledger reports.
type Service interface {
	MonthLog(ctx context.Context, month string) (*Document, error)
}

type rowReader interface {
	ListReportRows(ctx context.Context, from, to time.Time) ([]inventorylog.ReportRow, error)
}

type service struct {
	rows rowReader
	loc  *time.Location
}

// NewService constructs a report service. A nil location means UTC.
func NewService(rows rowReader, loc *time.Location) (Service, error) {
	if rows == nil {
		return nil, fmt.Errorf("inventory log repository required")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &service{rows: rows, loc: loc}, nil
}

func (s *service) MonthLog(ctx context.Context, month string) (*Document, error) {
	from, to, err := MonthRange(month, s.loc)
	if err != nil {
		return nil, err
	}
	rows, err := s.rows.ListReportRows(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.FromStore(err, "inventory log not found")
	}
	key := from.Format(monthLayout)
	var buf bytes.Buffer
	if err := RenderMonthLog(&buf, key, rows, s.loc); err != nil {
		return nil, err
	}
	return &Document{
		Filename: fmt.Sprintf("inventory-log-%s.pdf", key),
		Content:  buf.Bytes(),
	}, nil
}
