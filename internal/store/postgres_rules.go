package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/fibradoc/fibradoc/internal/model"
	"github.com/fibradoc/fibradoc/pkg/types"
)

// provisionBox creates the numbered ports of a CTO or the trays of a CEO
// in the same transaction as the box itself.
func (s *PostgresStore) provisionBox(ctx context.Context, tx *sql.Tx, box *model.Box) error {
	if box.Capacity <= 0 {
		return nil
	}

	now := time.Now().UTC()
	var query sq.InsertBuilder
	switch box.Type {
	case types.BoxTypeCTO:
		query = s.sb.Insert("portas").Columns("id", "numero", "status", "caixa_id", "criado_em", "atualizado_em")
		for n := 1; n <= box.Capacity; n++ {
			query = query.Values(uuid.NewString(), n, string(types.PortAvailable), box.ID, now, now)
		}
	case types.BoxTypeCEO:
		query = s.sb.Insert("bandejas").Columns("id", "numero", "capacidade", "caixa_id", "criado_em", "atualizado_em")
		for n := 1; n <= box.Capacity; n++ {
			query = query.Values(uuid.NewString(), n, types.TrayCapacity, box.ID, now, now)
		}
	default:
		return nil
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("building provisioning query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		return mapWriteError(err, "provisioning box "+box.ID)
	}
	return nil
}

// guardBoxDelete refuses to delete a box that still holds fusions.
func (s *PostgresStore) guardBoxDelete(ctx context.Context, tx *sql.Tx, id string) error {
	n, err := countInTx(ctx, tx, s.sb.Select("COUNT(*)").From("fusoes").Where(sq.Eq{"caixa_id": id}))
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("box %s has %d fusions: %w", id, n, ErrHasDependents)
	}
	return nil
}

// guardCapillaryDelete refuses to delete a capillary linked to any fusion or
// splitter, in either direction.
func (s *PostgresStore) guardCapillaryDelete(ctx context.Context, tx *sql.Tx, id string) error {
	fusions, err := countInTx(ctx, tx, s.sb.Select("COUNT(*)").From("fusoes").
		Where(sq.Or{sq.Eq{"capilar_origem_id": id}, sq.Eq{"capilar_destino_id": id}}))
	if err != nil {
		return err
	}
	splitters, err := countInTx(ctx, tx, s.sb.Select("COUNT(*)").From("spliters").
		Where(sq.Or{sq.Eq{"capilar_entrada_id": id}, sq.Eq{"capilar_saida_id": id}}))
	if err != nil {
		return err
	}
	if fusions+splitters > 0 {
		return fmt.Errorf("capillary %s has %d fusions and %d splitter links: %w", id, fusions, splitters, ErrHasDependents)
	}
	return nil
}

// guardTraySlot checks that the fusion's tray belongs to its box and still
// has a free slot. The tray row is locked so concurrent inserts serialize.
func (s *PostgresStore) guardTraySlot(ctx context.Context, tx *sql.Tx, fusionID string, f *model.Fusion) error {
	if f.TrayID == nil || *f.TrayID == "" {
		return nil
	}

	sqlStr, args, err := s.sb.Select("capacidade", "caixa_id").
		From("bandejas").
		Where(sq.Eq{"id": *f.TrayID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return fmt.Errorf("building tray query: %w", err)
	}

	var (
		capacity int
		boxID    string
	)
	if err := tx.QueryRowContext(ctx, sqlStr, args...).Scan(&capacity, &boxID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("tray %s: %w", *f.TrayID, ErrInvalidReference)
		}
		return fmt.Errorf("querying tray: %w", err)
	}
	if boxID != f.BoxID {
		return fmt.Errorf("tray %s belongs to box %s: %w", *f.TrayID, boxID, ErrInvalidReference)
	}

	used, err := countInTx(ctx, tx, s.sb.Select("COUNT(*)").From("fusoes").
		Where(sq.Eq{"bandeja_id": *f.TrayID}).
		Where(sq.NotEq{"id": fusionID}))
	if err != nil {
		return err
	}
	if used >= capacity {
		return fmt.Errorf("tray %s holds %d of %d fusions: %w", *f.TrayID, used, capacity, ErrCapacityExceeded)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Port and client link
// ---------------------------------------------------------------------------

// The link is stored on both sides, portas.cliente_id and clientes.porta_id.
// Every write to one side updates the other in the same transaction.

// releasePort detaches every client pointing at portID except keep.
func (s *PostgresStore) releasePort(ctx context.Context, tx *sql.Tx, portID string, keep *string) error {
	q := s.sb.Update("clientes").
		Set("porta_id", nil).
		Set("atualizado_em", time.Now().UTC()).
		Where(sq.Eq{"porta_id": portID})
	if client := nullable(keep); client != nil {
		q = q.Where(sq.NotEq{"id": client})
	}
	return execInTx(ctx, tx, q, "releasing port "+portID)
}

// claimPort points the client at portID. The client row is locked and must
// not hold another port.
func (s *PostgresStore) claimPort(ctx context.Context, tx *sql.Tx, portID, clientID string) error {
	sqlStr, args, err := s.sb.Select("porta_id").
		From("clientes").
		Where(sq.Eq{"id": clientID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return fmt.Errorf("building client query: %w", err)
	}

	var current sql.NullString
	if err := tx.QueryRowContext(ctx, sqlStr, args...).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("client %s: %w", clientID, ErrInvalidReference)
		}
		return fmt.Errorf("querying client: %w", err)
	}
	if current.Valid && current.String == portID {
		return nil
	}
	if current.Valid && current.String != "" {
		return fmt.Errorf("client %s is linked to port %s: %w", clientID, current.String, ErrLinkConflict)
	}

	return execInTx(ctx, tx, s.sb.Update("clientes").
		Set("porta_id", portID).
		Set("atualizado_em", time.Now().UTC()).
		Where(sq.Eq{"id": clientID}), "linking client "+clientID)
}

// linkPortClient mirrors a port write onto the clients table.
func (s *PostgresStore) linkPortClient(ctx context.Context, tx *sql.Tx, portID string, clientID *string) error {
	if err := s.releasePort(ctx, tx, portID, clientID); err != nil {
		return err
	}
	if nullable(clientID) == nil {
		return nil
	}
	return s.claimPort(ctx, tx, portID, *clientID)
}

// guardClientPort checks that the port a client is about to take exists,
// is not defective and is not held by another client. The port row stays
// locked until the transaction ends.
func (s *PostgresStore) guardClientPort(ctx context.Context, tx *sql.Tx, clientID string, portID *string) error {
	port := nullable(portID)
	if port == nil {
		return nil
	}

	sqlStr, args, err := s.sb.Select("status", "cliente_id").
		From("portas").
		Where(sq.Eq{"id": port}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return fmt.Errorf("building port query: %w", err)
	}

	var (
		status types.PortStatus
		holder sql.NullString
	)
	if err := tx.QueryRowContext(ctx, sqlStr, args...).Scan(&status, &holder); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("port %s: %w", *portID, ErrInvalidReference)
		}
		return fmt.Errorf("querying port: %w", err)
	}
	if holder.Valid && holder.String != "" && holder.String != clientID {
		return fmt.Errorf("port %s is linked to client %s: %w", *portID, holder.String, ErrLinkConflict)
	}
	if status == types.PortDefect {
		return fmt.Errorf("port %s is defective: %w", *portID, ErrLinkConflict)
	}
	return nil
}

// linkClientPort mirrors a client write onto the ports table. Ports the
// client leaves become available. The port it takes is marked in use unless
// it is reserved.
func (s *PostgresStore) linkClientPort(ctx context.Context, tx *sql.Tx, clientID string, portID *string) error {
	now := time.Now().UTC()
	release := s.sb.Update("portas").
		Set("cliente_id", nil).
		Set("status", string(types.PortAvailable)).
		Set("atualizado_em", now).
		Where(sq.Eq{"cliente_id": clientID})
	port := nullable(portID)
	if port != nil {
		release = release.Where(sq.NotEq{"id": port})
	}
	if err := execInTx(ctx, tx, release, "releasing ports of client "+clientID); err != nil {
		return err
	}
	if port == nil {
		return nil
	}

	return execInTx(ctx, tx, s.sb.Update("portas").
		Set("cliente_id", clientID).
		Set("status", sq.Expr("CASE WHEN status = ? THEN status ELSE ? END",
			string(types.PortReserved), string(types.PortInUse))).
		Set("atualizado_em", now).
		Where(sq.Eq{"id": port}), "linking port "+*portID)
}

// ---------------------------------------------------------------------------
// Port batch maintenance
// ---------------------------------------------------------------------------

type portTable struct {
	*table[model.Port]
	s *PostgresStore
}

type upsertedPort struct {
	id       string
	clientID *string
}

// ReplaceForBox upserts the given ports by number and returns all ports of
// the box. Client links are released for every port first and claimed
// afterwards, so a client can move between ports within one batch.
func (p *portTable) ReplaceForBox(ctx context.Context, boxID string, ports []model.Port) ([]model.Port, error) {
	err := inTx(ctx, p.db, func(tx *sql.Tx) error {
		sqlStr, args, err := p.sb.Select("id").From("caixas").Where(sq.Eq{"id": boxID}).Suffix("FOR UPDATE").ToSql()
		if err != nil {
			return fmt.Errorf("building box query: %w", err)
		}
		var found string
		if err := tx.QueryRowContext(ctx, sqlStr, args...).Scan(&found); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("querying box: %w", err)
		}

		if len(ports) == 0 {
			return nil
		}

		now := time.Now().UTC()
		clients := make(map[int]*string, len(ports))
		query := p.sb.Insert("portas").
			Columns("id", "numero", "status", "cliente_id", "spliter_id", "caixa_id", "criado_em", "atualizado_em")
		for _, port := range ports {
			port.Normalize()
			clients[port.Number] = port.ClientID
			query = query.Values(uuid.NewString(), port.Number, string(port.Status),
				nullable(port.ClientID), nullable(port.SplitterID), boxID, now, now)
		}
		query = query.Suffix("ON CONFLICT (caixa_id, numero) DO UPDATE SET " +
			"status = EXCLUDED.status, cliente_id = EXCLUDED.cliente_id, " +
			"spliter_id = EXCLUDED.spliter_id, atualizado_em = EXCLUDED.atualizado_em " +
			"RETURNING id, numero")

		sqlStr, args, err = query.ToSql()
		if err != nil {
			return fmt.Errorf("building port upsert: %w", err)
		}
		upserted, err := collectUpserted(ctx, tx, sqlStr, args, clients)
		if err != nil {
			return err
		}

		for _, u := range upserted {
			if err := p.s.releasePort(ctx, tx, u.id, u.clientID); err != nil {
				return err
			}
		}
		for _, u := range upserted {
			if nullable(u.clientID) == nil {
				continue
			}
			if err := p.s.claimPort(ctx, tx, u.id, *u.clientID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	items, _, err := p.List(ctx, ListOptions{Filters: map[string]string{"caixaId": boxID}})
	return items, err
}

// collectUpserted runs the upsert and pairs each returned port id with the
// client requested for its number. Rows are drained before the caller issues
// further statements on tx.
func collectUpserted(ctx context.Context, tx *sql.Tx, sqlStr string, args []any, clients map[int]*string) ([]upsertedPort, error) {
	rows, err := tx.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, mapWriteError(err, "upserting ports")
	}
	defer rows.Close()

	var out []upsertedPort
	for rows.Next() {
		var (
			id     string
			number int
		)
		if err := rows.Scan(&id, &number); err != nil {
			return nil, fmt.Errorf("scanning upserted port: %w", err)
		}
		out = append(out, upsertedPort{id: id, clientID: clients[number]})
	}
	if err := rows.Err(); err != nil {
		return nil, mapWriteError(err, "upserting ports")
	}
	return out, nil
}
