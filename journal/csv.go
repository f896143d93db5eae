package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSV struct {
	fills  *csv.Writer
	equity *csv.Writer
	ff, ef *os.File
}

var (
	fillsHeader  = []string{"fill_id", "time", "symbol", "side", "quantity", "price", "total", "avg_cost", "realized_per_share", "cash_after"}
	equityHeader = []string{"time", "tick", "cash", "positions_value", "total", "unrealized_pnl"}
)

func NewCSV(fillsPath, equityPath string) (*CSV, error) {
	ff, err := os.Create(fillsPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		_ = ff.Close()
		return nil, err
	}

	fw := csv.NewWriter(ff)
	ew := csv.NewWriter(ef)

	if err := fw.Write(fillsHeader); err != nil {
		return nil, err
	}
	if err := ew.Write(equityHeader); err != nil {
		return nil, err
	}

	fw.Flush()
	if err := fw.Error(); err != nil {
		return nil, err
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSV{fw, ew, ff, ef}, nil
}

func (j *CSV) RecordFill(r FillRecord) error {
	err := j.fills.Write([]string{
		r.FillID,
		r.Time.Format(time.RFC3339),
		r.Symbol,
		r.Side,
		strconv.Itoa(r.Quantity),
		f(r.Price),
		f(r.Total),
		f(r.AvgCost),
		f(r.RealizedPerShare),
		f(r.CashAfter),
	})
	if err != nil {
		return err
	}
	j.fills.Flush()
	return j.fills.Error()
}

func (j *CSV) RecordEquity(e EquitySnapshot) error {
	err := j.equity.Write([]string{
		e.Time.Format(time.RFC3339),
		strconv.FormatInt(e.Tick, 10),
		f(e.Cash),
		f(e.PositionsValue),
		f(e.Total),
		f(e.UnrealizedPnL),
	})
	if err != nil {
		return err
	}

	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSV) Close() error {
	j.fills.Flush()
	if err := j.fills.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}

	if err := j.ff.Close(); err != nil {
		return err
	}
	return j.ef.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}
