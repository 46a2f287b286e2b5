// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"context"
	"database/sql"
	"math/big"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/liquefy/liquefy/lst"
)

// Kind labels of the pool's audit events.
const (
	KindDeposit           = "deposit"
	KindReferral          = "referral"
	KindWithdrawRequested = "withdraw-requested"
	KindWithdrawCanceled  = "withdraw-canceled"
	KindClaimed           = "claimed"
	KindEraAdvanced       = "era-advanced"
	KindBatchUnlocking    = "batch-unlocking"
	KindBatchFinalized    = "batch-finalized"
	KindStaked            = "staked"
	KindBonus             = "bonus"
	KindLoss              = "loss"
	KindConfigChanged     = "config-changed"
	KindRescue            = "rescue"
)

const eventTableSchema = `CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	ts INTEGER NOT NULL,
	kind TEXT NOT NULL,
	usr BLOB,
	batchId INTEGER NOT NULL,
	amount TEXT,
	extra TEXT);
CREATE INDEX IF NOT EXISTS event_kind ON event(kind);
CREATE INDEX IF NOT EXISTS event_usr ON event(usr);
CREATE INDEX IF NOT EXISTS event_batch ON event(batchId);`

// Event is one entry of the pool's append-only audit trail. Amounts are
// stored as decimal strings so numeric fidelity survives the round trip.
type Event struct {
	Sequence  uint64       `json:"sequence"`
	Timestamp uint64       `json:"timestamp"`
	Kind      string       `json:"kind"`
	User      *lst.Address `json:"user,omitempty"`
	BatchID   uint64       `json:"batchId,omitempty"`
	Amount    *big.Int     `json:"amount,omitempty"`
	Extra     string       `json:"extra,omitempty"`
}

type OrderType string

const (
	ASC  OrderType = "ASC"
	DESC OrderType = "DESC"
)

// Range bounds matched events by sequence number, inclusive.
type Range struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// Filter selects events. Nil/zero fields match everything.
type Filter struct {
	Kind    string       `json:"kind"`
	User    *lst.Address `json:"user"`
	BatchID *uint64      `json:"batchId"`
	Order   OrderType    `json:"order"` // default asc
	Range   *Range
	Options *Options
}

// EventDB manages the audit trail of pool operations.
type EventDB struct {
	path          string
	db            *sql.DB
	sqliteVersion string
}

// New opens or creates an event db at path.
func New(path string) (*EventDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open event db")
	}
	if _, err := db.Exec(eventTableSchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "init event db schema")
	}
	s, _, _ := sqlite3.Version()
	return &EventDB{
		path:          path,
		db:            db,
		sqliteVersion: s,
	}, nil
}

// NewMem creates a memory-backed event db.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Append inserts events into the db within one transaction.
func (db *EventDB) Append(events ...*Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin event tx")
	}
	for _, event := range events {
		var usr []byte
		if event.User != nil {
			usr = event.User.Bytes()
		}
		var amount interface{}
		if event.Amount != nil {
			amount = event.Amount.String()
		}
		if _, err = tx.Exec("INSERT INTO event(ts, kind, usr, batchId, amount, extra) VALUES (?, ?, ?, ?, ?, ?);",
			event.Timestamp,
			event.Kind,
			usr,
			event.BatchID,
			amount,
			event.Extra); err != nil {
			tx.Rollback()
			return errors.Wrap(err, "insert event")
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit event tx")
	}
	return nil
}

// Query returns events matching the filter.
func (db *EventDB) Query(ctx context.Context, filter *Filter) ([]*Event, error) {
	if filter == nil {
		return db.query(ctx, "SELECT * FROM event")
	}
	var args []interface{}
	stmt := "SELECT * FROM event WHERE 1"
	if filter.Range != nil {
		args = append(args, filter.Range.From)
		stmt += " AND seq >= ? "
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND seq <= ? "
		}
	}
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		stmt += " AND kind = ? "
	}
	if filter.User != nil {
		args = append(args, filter.User.Bytes())
		stmt += " AND usr = ? "
	}
	if filter.BatchID != nil {
		args = append(args, *filter.BatchID)
		stmt += " AND batchId = ? "
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC "
	} else {
		stmt += " ORDER BY seq ASC "
	}

	if filter.Options != nil {
		stmt += " limit ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.query(ctx, stmt, args...)
}

func (db *EventDB) query(ctx context.Context, stmt string, args ...interface{}) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query events")
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			seq     uint64
			ts      uint64
			kind    string
			usr     []byte
			batchID uint64
			amount  sql.NullString
			extra   sql.NullString
		)
		if err := rows.Scan(
			&seq,
			&ts,
			&kind,
			&usr,
			&batchID,
			&amount,
			&extra,
		); err != nil {
			return nil, errors.Wrap(err, "scan event")
		}
		event := &Event{
			Sequence:  seq,
			Timestamp: ts,
			Kind:      kind,
			BatchID:   batchID,
		}
		if len(usr) > 0 {
			addr := lst.BytesToAddress(usr)
			event.User = &addr
		}
		if amount.Valid {
			v, ok := new(big.Int).SetString(amount.String, 10)
			if !ok {
				return nil, errors.New("corrupt amount in event db")
			}
			event.Amount = v
		}
		if extra.Valid {
			event.Extra = extra.String
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate events")
	}
	return events, nil
}

// Path return db's directory.
func (db *EventDB) Path() string {
	return db.path
}

// Close close sqlite.
func (db *EventDB) Close() error {
	return db.db.Close()
}
