package event

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dkverwaltung/dkledger/internal/domain/report"
	"github.com/dkverwaltung/dkledger/internal/domain/service"
	"github.com/dkverwaltung/dkledger/pkg/events"
)

const (
	AggregateTypeContract     = "Contract"
	AggregateTypeTransferList = "TransferList"

	TypeStatementGenerated    = "dkledger.statement.generated"
	TypeTransferListGenerated = "dkledger.transferlist.generated"
)

// StatementGenerated is emitted after an annual statement was built.
type StatementGenerated struct {
	events.BaseEvent
	ContractID     uuid.UUID `json:"contract_id"`
	ContractNumber int       `json:"contract_number"`
	Year           int       `json:"year"`
	Rows           int       `json:"rows"`
	TotalInterest  string    `json:"total_interest"`
	TotalBalance   string    `json:"total_balance"`
}

func NewStatementGenerated(st service.Statement) (StatementGenerated, error) {
	e := StatementGenerated{
		ContractID:     st.ContractID,
		ContractNumber: st.ContractNumber,
		Year:           st.Year,
		Rows:           len(st.Rows),
		TotalInterest:  st.TotalInterest.StringFixed(2),
		TotalBalance:   st.TotalBalance.StringFixed(2),
	}
	base, err := events.NewJSONEvent(TypeStatementGenerated, st.ContractID, AggregateTypeContract, e)
	if err != nil {
		return StatementGenerated{}, err
	}
	e.BaseEvent = base
	return e, nil
}

// TransferListGenerated is emitted after an annual transfer list was built.
type TransferListGenerated struct {
	events.BaseEvent
	Year          int    `json:"year"`
	ContactNumber int    `json:"contact_number,omitempty"`
	Contracts     int    `json:"contracts"`
	TotalInterest string `json:"total_interest"`
	TotalBalance  string `json:"total_balance"`
}

func NewTransferListGenerated(r report.TransferListReport, filter report.TransferListFilter) (TransferListGenerated, error) {
	e := TransferListGenerated{
		Year:          r.Year,
		ContactNumber: filter.ContactNumber,
		Contracts:     len(r.Items),
		TotalInterest: r.TotalInterest.StringFixed(2),
		TotalBalance:  r.TotalBalance.StringFixed(2),
	}
	base, err := events.NewJSONEvent(TypeTransferListGenerated, TransferListID(r.Year, filter), AggregateTypeTransferList, e)
	if err != nil {
		return TransferListGenerated{}, err
	}
	e.BaseEvent = base
	return e, nil
}

// TransferListID derives a stable aggregate ID for a transfer list.
func TransferListID(year int, filter report.TransferListFilter) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("dkledger/transferlist/%d/%d", year, filter.ContactNumber)))
}
