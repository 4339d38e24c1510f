package postgres

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/dkverwaltung/dkledger/internal/domain/model"
	"github.com/dkverwaltung/dkledger/internal/domain/port"
	"github.com/dkverwaltung/dkledger/internal/domain/valueobject"
	pgpkg "github.com/dkverwaltung/dkledger/pkg/postgres"
)

// Compile-time interface check.
var _ port.ContractSnapshotRepository = (*SnapshotRepo)(nil)

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	pgpkg.TxBeginner
	Ping(ctx context.Context) error
}

// SnapshotRepo implements ContractSnapshotRepository using PostgreSQL. Every
// method reads inside one repeatable-read, read-only transaction.
type SnapshotRepo struct {
	db DB
}

func NewSnapshotRepo(db DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

const contractColumns = `
	SELECT c.id, c.number, c.comment, c.category, c.terminated_at,
	       k.id, k.number, k.last_name, k.first_name, k.address, k.phone,
	       k.email, k.iban, k.bic, k.bank_name, k.remark
	FROM contracts c
	JOIN contacts k ON k.id = c.contact_id`

func (r *SnapshotRepo) FindByID(ctx context.Context, id uuid.UUID) (model.Contract, error) {
	var contract model.Contract
	err := pgpkg.WithSnapshot(ctx, r.db, func(q pgpkg.Querier) error {
		contracts, err := loadContracts(ctx, q, contractColumns+` WHERE c.id = $1`, id)
		if err != nil {
			return err
		}
		if len(contracts) == 0 {
			return fmt.Errorf("contract %s: %w", id, port.ErrContractNotFound)
		}
		contract = contracts[0]
		return nil
	})
	if err != nil {
		return model.Contract{}, err
	}
	return contract, nil
}

func (r *SnapshotRepo) ListAll(ctx context.Context) ([]model.Contract, error) {
	var contracts []model.Contract
	err := pgpkg.WithSnapshot(ctx, r.db, func(q pgpkg.Querier) error {
		var err error
		contracts, err = loadContracts(ctx, q, contractColumns+` ORDER BY c.number`)
		return err
	})
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *SnapshotRepo) ListWithLedgerTotal(ctx context.Context, asOf civil.Date) ([]model.Contract, decimal.Decimal, error) {
	var (
		contracts []model.Contract
		total     decimal.Decimal
	)
	err := pgpkg.WithSnapshot(ctx, r.db, func(q pgpkg.Querier) error {
		var err error
		contracts, err = loadContracts(ctx, q, contractColumns+` ORDER BY c.number`)
		if err != nil {
			return err
		}
		err = q.QueryRow(ctx, `
			SELECT COALESCE(SUM(amount), 0) FROM accounting_entries WHERE date <= $1
		`, asOf.In(time.UTC)).Scan(&total)
		if err != nil {
			return fmt.Errorf("query ledger total: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, decimal.Zero, err
	}
	return contracts, total, nil
}

func (r *SnapshotRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

type contractRow struct {
	id           uuid.UUID
	number       int
	comment      string
	category     string
	terminatedAt *time.Time
	contact      model.Contact
}

// loadContracts runs query (a contractColumns select) and attaches versions
// and entries to every contract found.
func loadContracts(ctx context.Context, q pgpkg.Querier, query string, args ...any) ([]model.Contract, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query contracts: %w", err)
	}
	heads, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (contractRow, error) {
		var c contractRow
		err := row.Scan(&c.id, &c.number, &c.comment, &c.category, &c.terminatedAt,
			&c.contact.ID, &c.contact.Number, &c.contact.LastName, &c.contact.FirstName,
			&c.contact.Address, &c.contact.Phone, &c.contact.Email, &c.contact.IBAN,
			&c.contact.BIC, &c.contact.BankName, &c.contact.Remark)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan contract: %w", err)
	}
	if len(heads) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(heads))
	for i, h := range heads {
		ids[i] = h.id
	}
	versions, err := loadVersions(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	entries, err := loadEntries(ctx, q, ids)
	if err != nil {
		return nil, err
	}

	contracts := make([]model.Contract, 0, len(heads))
	for _, h := range heads {
		category, err := valueobject.NewCategory(h.category)
		if err != nil {
			return nil, fmt.Errorf("contract %d: %w", h.number, err)
		}
		var terminatedAt *civil.Date
		if h.terminatedAt != nil {
			d := civil.DateOf(*h.terminatedAt)
			terminatedAt = &d
		}
		c, err := model.NewContract(h.id, h.number, h.contact, category, h.comment, terminatedAt,
			versions[h.id], entries[h.id])
		if err != nil {
			return nil, fmt.Errorf("reconstruct contract %d: %w", h.number, err)
		}
		contracts = append(contracts, c)
	}
	return contracts, nil
}

func loadVersions(ctx context.Context, q pgpkg.Querier, ids []uuid.UUID) (map[uuid.UUID][]model.ContractVersion, error) {
	rows, err := q.Query(ctx, `
		SELECT contract_id, id, version, start, COALESCE(duration_months, 0), COALESCE(duration_years, 0),
		       COALESCE(cancellation_months, 0), interest_rate, interest_type
		FROM contract_versions
		WHERE contract_id = ANY($1)
		ORDER BY contract_id, start
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("query contract versions: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]model.ContractVersion, len(ids))
	for rows.Next() {
		var (
			contractID   uuid.UUID
			v            model.ContractVersion
			start        time.Time
			interestType string
		)
		if err := rows.Scan(&contractID, &v.ID, &v.Number, &start, &v.DurationMonths, &v.DurationYears,
			&v.CancellationMonths, &v.InterestRate, &interestType); err != nil {
			return nil, fmt.Errorf("scan contract version: %w", err)
		}
		v.Start = civil.DateOf(start)
		v.InterestType, err = valueobject.ParseInterestType(interestType)
		if err != nil {
			return nil, fmt.Errorf("contract version %s: %w", v.ID, err)
		}
		out[contractID] = append(out[contractID], v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contract versions: %w", err)
	}
	return out, nil
}

func loadEntries(ctx context.Context, q pgpkg.Querier, ids []uuid.UUID) (map[uuid.UUID][]model.AccountingEntry, error) {
	rows, err := q.Query(ctx, `
		SELECT contract_id, id, seq, date, amount, comment
		FROM accounting_entries
		WHERE contract_id = ANY($1)
		ORDER BY contract_id, date, seq
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("query accounting entries: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]model.AccountingEntry, len(ids))
	for rows.Next() {
		var (
			contractID uuid.UUID
			e          model.AccountingEntry
			date       time.Time
		)
		if err := rows.Scan(&contractID, &e.ID, &e.Seq, &date, &e.Amount, &e.Comment); err != nil {
			return nil, fmt.Errorf("scan accounting entry: %w", err)
		}
		e.Date = civil.DateOf(date)
		out[contractID] = append(out[contractID], e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounting entries: %w", err)
	}
	return out, nil
}

