// backend/src/model/note_store.go
package model

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/username/notafolio/backend/src/models"
)

// InsertNote persists a settlement note and its operations in one
// transaction. The note history is append-only: notes are never updated.
func InsertNote(db *sql.DB, note *models.SettlementNote) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin insert note tx: %w", err)
	}
	defer tx.Rollback()

	resultByType, err := json.Marshal(note.ResultByType)
	if err != nil {
		return fmt.Errorf("marshal result_by_type: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO settlement_notes
			(note_id, trade_date, reference_month, broker, total_value,
			 day_trade_result, swing_trade_result,
			 fee_brokerage, fee_settlement, fee_registration, fee_total,
			 result_by_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		note.NoteID, note.TradeDate, note.ReferenceMonth, note.Broker, note.TotalValue,
		note.DayTradeResult, note.SwingTradeResult,
		note.Fees.Brokerage, note.Fees.Settlement, note.Fees.Registration, note.Fees.Total,
		string(resultByType),
	)
	if err != nil {
		return fmt.Errorf("insert settlement note %s: %w", note.NoteID, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO operations
			(note_id, side, asset_code, instrument_type, quantity, unit_price,
			 trade_date, total_value, brokerage_fee, is_day_trade, is_in_block,
			 option_strike, base_instrument)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert operation: %w", err)
	}
	defer stmt.Close()

	for _, op := range note.Operations {
		_, err := stmt.Exec(
			note.NoteID, string(op.Side), op.AssetCode, string(op.InstrumentType),
			op.Quantity, op.UnitPrice, op.TradeDate, op.TotalValue, op.BrokerageFee,
			op.IsDayTrade, op.IsInBlock, op.OptionStrike, op.BaseInstrument,
		)
		if err != nil {
			return fmt.Errorf("insert operation for note %s: %w", note.NoteID, err)
		}
	}

	return tx.Commit()
}

// NoteExists reports whether a note with the given ID has already been ingested.
func NoteExists(db *sql.DB, noteID string) (bool, error) {
	var count int
	if err := db.QueryRow(`SELECT COUNT(1) FROM settlement_notes WHERE note_id = ?`, noteID).Scan(&count); err != nil {
		return false, fmt.Errorf("check note existence: %w", err)
	}
	return count > 0, nil
}

// GetNoteByID loads one note with its operations in extraction order.
func GetNoteByID(db *sql.DB, noteID string) (*models.SettlementNote, error) {
	row := db.QueryRow(`
		SELECT note_id, trade_date, reference_month, broker, total_value,
		       day_trade_result, swing_trade_result,
		       fee_brokerage, fee_settlement, fee_registration, fee_total,
		       result_by_type, created_at
		FROM settlement_notes WHERE note_id = ?`, noteID)

	note, err := scanNote(row)
	if err != nil {
		return nil, err
	}

	note.Operations, err = listOperationsForNote(db, noteID)
	if err != nil {
		return nil, err
	}
	return note, nil
}

// ListNotes returns the full note history, oldest first, with operations.
func ListNotes(db *sql.DB) ([]models.SettlementNote, error) {
	rows, err := db.Query(`
		SELECT note_id, trade_date, reference_month, broker, total_value,
		       day_trade_result, swing_trade_result,
		       fee_brokerage, fee_settlement, fee_registration, fee_total,
		       result_by_type, created_at
		FROM settlement_notes ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("query settlement notes: %w", err)
	}
	defer rows.Close()

	var notes []models.SettlementNote
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settlement notes: %w", err)
	}

	for i := range notes {
		notes[i].Operations, err = listOperationsForNote(db, notes[i].NoteID)
		if err != nil {
			return nil, err
		}
	}
	return notes, nil
}

// ListAllOperations returns every persisted operation in insertion order.
// Derived aggregates (portfolio, tax) are recomputed from this full history.
func ListAllOperations(db *sql.DB) ([]models.Operation, error) {
	rows, err := db.Query(`
		SELECT id, note_id, side, asset_code, instrument_type, quantity, unit_price,
		       trade_date, total_value, brokerage_fee, is_day_trade, is_in_block,
		       COALESCE(option_strike, ''), COALESCE(base_instrument, '')
		FROM operations ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()
	return scanOperations(rows)
}

// DeleteAllNotes wipes the note history. Operations cascade.
func DeleteAllNotes(db *sql.DB) error {
	if _, err := db.Exec(`DELETE FROM settlement_notes`); err != nil {
		return fmt.Errorf("delete settlement notes: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*models.SettlementNote, error) {
	var note models.SettlementNote
	var resultByType string
	err := row.Scan(
		&note.NoteID, &note.TradeDate, &note.ReferenceMonth, &note.Broker, &note.TotalValue,
		&note.DayTradeResult, &note.SwingTradeResult,
		&note.Fees.Brokerage, &note.Fees.Settlement, &note.Fees.Registration, &note.Fees.Total,
		&resultByType, &note.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan settlement note: %w", err)
	}
	note.ResultByType = make(map[models.InstrumentType]models.TradeResult)
	if err := json.Unmarshal([]byte(resultByType), &note.ResultByType); err != nil {
		return nil, fmt.Errorf("unmarshal result_by_type for note %s: %w", note.NoteID, err)
	}
	return &note, nil
}

func listOperationsForNote(db *sql.DB, noteID string) ([]models.Operation, error) {
	rows, err := db.Query(`
		SELECT id, note_id, side, asset_code, instrument_type, quantity, unit_price,
		       trade_date, total_value, brokerage_fee, is_day_trade, is_in_block,
		       COALESCE(option_strike, ''), COALESCE(base_instrument, '')
		FROM operations WHERE note_id = ? ORDER BY id ASC`, noteID)
	if err != nil {
		return nil, fmt.Errorf("query operations for note %s: %w", noteID, err)
	}
	defer rows.Close()
	return scanOperations(rows)
}

func scanOperations(rows *sql.Rows) ([]models.Operation, error) {
	var operations []models.Operation
	for rows.Next() {
		var op models.Operation
		var side, instrumentType string
		err := rows.Scan(
			&op.ID, &op.NoteID, &side, &op.AssetCode, &instrumentType,
			&op.Quantity, &op.UnitPrice, &op.TradeDate, &op.TotalValue,
			&op.BrokerageFee, &op.IsDayTrade, &op.IsInBlock,
			&op.OptionStrike, &op.BaseInstrument,
		)
		if err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		op.Side = models.OperationSide(side)
		op.InstrumentType = models.InstrumentType(instrumentType)
		operations = append(operations, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operations: %w", err)
	}
	return operations, nil
}
