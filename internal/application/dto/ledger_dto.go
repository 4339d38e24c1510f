package dto

import (
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Statement DTOs ---

// BuildStatementRequest is the input DTO for building an annual statement.
type BuildStatementRequest struct {
	ContractID uuid.UUID
	Year       int
}

// StatementRowDTO transfers one statement row between layers.
type StatementRowDTO struct {
	Kind           string
	Date           civil.Date
	DateLabel      string
	Description    string
	Amount         decimal.Decimal
	Rate           decimal.Decimal
	DaysLeftInYear int
	Interest       decimal.Decimal
}

// StatementResponse is the output DTO for an annual statement.
type StatementResponse struct {
	ContractID     uuid.UUID
	ContractNumber int
	ContactNumber  int
	ContactName    string
	Year           int
	Rows           []StatementRowDTO
	TotalInterest  decimal.Decimal
	TotalBalance   decimal.Decimal
}

// CarriedInterestRequest is the input DTO for the prior-years interest query.
type CarriedInterestRequest struct {
	ContractID uuid.UUID
	Cutoff     civil.Date
}

// CarriedInterestResponse is the output DTO for the prior-years interest query.
// Present is false when the contract had no version before the cutoff year.
type CarriedInterestResponse struct {
	ContractID uuid.UUID
	Cutoff     civil.Date
	Present    bool
	Amount     decimal.Decimal
}

// --- Report DTOs ---

// ContractRefDTO identifies a contract in report lines.
type ContractRefDTO struct {
	ContractID     uuid.UUID
	ContractNumber int
	ContactNumber  int
	ContactName    string
}

// TransferListRequest is the input DTO for the annual transfer list.
// ContactNumber 0 selects all lenders.
type TransferListRequest struct {
	Year          int
	ContactNumber int
}

// TransferListItemDTO is one contract's statement in the transfer list.
type TransferListItemDTO struct {
	ContractRefDTO
	Rows          []StatementRowDTO
	TotalInterest decimal.Decimal
	TotalBalance  decimal.Decimal
}

// TransferListResponse is the output DTO for the annual transfer list.
type TransferListResponse struct {
	Year          int
	Items         []TransferListItemDTO
	TotalInterest decimal.Decimal
	TotalBalance  decimal.Decimal
}

// AverageRateRequest is the input DTO for the average rate report.
type AverageRateRequest struct {
	AsOf civil.Date
}

// WeightedRateDTO is one contract's share of the average rate.
type WeightedRateDTO struct {
	ContractRefDTO
	Balance decimal.Decimal
	Rate    decimal.Decimal
	Weight  decimal.Decimal
}

// AverageRateResponse is the output DTO for the average rate report.
type AverageRateResponse struct {
	AsOf        civil.Date
	Contracts   []WeightedRateDTO
	TotalCredit decimal.Decimal
	AverageRate decimal.Decimal
}

// RemainingDurationRequest is the input DTO for the remaining-duration report.
type RemainingDurationRequest struct {
	Cutoff civil.Date
}

// RemainingContractDTO is a contract with its remaining term.
type RemainingContractDTO struct {
	ContractRefDTO
	Balance        decimal.Decimal
	Expiry         civil.Date
	RemainingYears decimal.Decimal
}

// RemainingBucketDTO groups contracts by remaining term.
type RemainingBucketDTO struct {
	Label     string
	Contracts []RemainingContractDTO
	Balance   decimal.Decimal
}

// RemainingDurationResponse is the output DTO for the remaining-duration report.
type RemainingDurationResponse struct {
	Cutoff  civil.Date
	Buckets []RemainingBucketDTO
	Balance decimal.Decimal
}

// ExpiringContractsRequest is the input DTO for the expiring-contracts report.
type ExpiringContractsRequest struct {
	AsOf civil.Date
}

// ExpiringContractDTO is a contract with outstanding credit and its expiry.
type ExpiringContractDTO struct {
	ContractRefDTO
	Balance decimal.Decimal
	Expiry  civil.Date
}

// ExpiringContractsResponse is the output DTO for the expiring-contracts report.
type ExpiringContractsResponse struct {
	AsOf      civil.Date
	Contracts []ExpiringContractDTO
}

// --- Messaging DTOs ---

// EntryBookedRequest notifies the service of a new accounting entry.
type EntryBookedRequest struct {
	ContractID uuid.UUID
	Date       civil.Date
}

// EntryBookedResponse reports what a booking notification refreshed.
type EntryBookedResponse struct {
	Year               int
	InvalidatedReports int
	Statement          StatementResponse
}
