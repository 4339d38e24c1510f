package usecase

import (
	"github.com/dkverwaltung/dkledger/internal/application/dto"
	"github.com/dkverwaltung/dkledger/internal/domain/model"
	"github.com/dkverwaltung/dkledger/internal/domain/report"
	"github.com/dkverwaltung/dkledger/internal/domain/service"
)

func toRefDTO(ref report.ContractRef) dto.ContractRefDTO {
	return dto.ContractRefDTO{
		ContractID:     ref.ContractID,
		ContractNumber: ref.ContractNumber,
		ContactNumber:  ref.ContactNumber,
		ContactName:    ref.ContactName,
	}
}

func toRowDTOs(rows []service.StatementRow) []dto.StatementRowDTO {
	out := make([]dto.StatementRowDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.StatementRowDTO{
			Kind:           string(r.Kind),
			Date:           r.Date,
			DateLabel:      r.DateLabel,
			Description:    r.Description,
			Amount:         r.Amount,
			Rate:           r.Rate,
			DaysLeftInYear: r.DaysLeftInYear,
			Interest:       r.Interest,
		})
	}
	return out
}

func toStatementResponse(c model.Contract, st service.Statement) dto.StatementResponse {
	return dto.StatementResponse{
		ContractID:     st.ContractID,
		ContractNumber: st.ContractNumber,
		ContactNumber:  c.Contact().Number,
		ContactName:    c.Contact().FullName(),
		Year:           st.Year,
		Rows:           toRowDTOs(st.Rows),
		TotalInterest:  st.TotalInterest,
		TotalBalance:   st.TotalBalance,
	}
}

func toTransferListResponse(r report.TransferListReport) dto.TransferListResponse {
	items := make([]dto.TransferListItemDTO, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, dto.TransferListItemDTO{
			ContractRefDTO: toRefDTO(it.ContractRef),
			Rows:           toRowDTOs(it.Statement.Rows),
			TotalInterest:  it.Statement.TotalInterest,
			TotalBalance:   it.Statement.TotalBalance,
		})
	}
	return dto.TransferListResponse{
		Year:          r.Year,
		Items:         items,
		TotalInterest: r.TotalInterest,
		TotalBalance:  r.TotalBalance,
	}
}

func toAverageRateResponse(r report.AverageRateReport) dto.AverageRateResponse {
	lines := make([]dto.WeightedRateDTO, 0, len(r.Contracts))
	for _, c := range r.Contracts {
		lines = append(lines, dto.WeightedRateDTO{
			ContractRefDTO: toRefDTO(c.ContractRef),
			Balance:        c.Balance,
			Rate:           c.Rate,
			Weight:         c.Weight,
		})
	}
	return dto.AverageRateResponse{
		AsOf:        r.AsOf,
		Contracts:   lines,
		TotalCredit: r.TotalCredit,
		AverageRate: r.AverageRate,
	}
}

func toRemainingDurationResponse(r report.RemainingDurationReport) dto.RemainingDurationResponse {
	buckets := make([]dto.RemainingBucketDTO, 0, len(r.Buckets))
	for _, b := range r.Buckets {
		contracts := make([]dto.RemainingContractDTO, 0, len(b.Contracts))
		for _, c := range b.Contracts {
			contracts = append(contracts, dto.RemainingContractDTO{
				ContractRefDTO: toRefDTO(c.ContractRef),
				Balance:        c.Balance,
				Expiry:         c.Expiry,
				RemainingYears: c.RemainingYears,
			})
		}
		buckets = append(buckets, dto.RemainingBucketDTO{Label: b.Label, Contracts: contracts, Balance: b.Balance})
	}
	return dto.RemainingDurationResponse{Cutoff: r.Cutoff, Buckets: buckets, Balance: r.Balance}
}
