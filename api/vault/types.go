// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/trustake/staker/staker"
)

// Amounts travel as decimal strings: yocto values overflow JSON numbers.

type StakeRequest struct {
	Caller string `json:"caller"`
	Pool   string `json:"pool"`
	Amount string `json:"amount"`
}

type UnstakeRequest struct {
	Caller  string `json:"caller"`
	Pool    string `json:"pool"`
	Amount  string `json:"amount"`
	Deposit string `json:"deposit"`
}

type WithdrawRequest struct {
	Caller string `json:"caller"`
	Nonce  uint64 `json:"nonce"`
}

type AllocateRequest struct {
	Caller    string `json:"caller"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
	Deposit   string `json:"deposit"`
}

type DeallocateRequest struct {
	Caller    string `json:"caller"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

type DistributeRequest struct {
	Caller    string `json:"caller"`
	Recipient string `json:"recipient"`
	InAsset   bool   `json:"inAsset"`
	Deposit   string `json:"deposit"`
}

type DistributeAllRequest struct {
	Caller  string `json:"caller"`
	InAsset bool   `json:"inAsset"`
	Deposit string `json:"deposit"`
}

type CollectFeesRequest struct {
	Caller string `json:"caller"`
}

type SettlementResponse struct {
	Nonce  uint64 `json:"nonce,omitempty"`
	Amount string `json:"amount"`
}

type PriceResponse struct {
	Num   string `json:"num"`
	Denom string `json:"denom"`
}

type InfoResponse struct {
	Owner                string `json:"owner"`
	PendingOwner         string `json:"pendingOwner,omitempty"`
	Treasury             string `json:"treasury"`
	DefaultPool          string `json:"defaultPool"`
	Paused               bool   `json:"paused"`
	Locked               bool   `json:"locked"`
	Fee                  uint64 `json:"fee"`
	DistributionFee      uint64 `json:"distributionFee"`
	MinDeposit           string `json:"minDeposit"`
	TotalStaked          string `json:"totalStaked"`
	TaxExemptStake       string `json:"taxExemptStake"`
	WithdrawnAmount      string `json:"withdrawnAmount"`
	TotalSupply          string `json:"totalSupply"`
	TotalStakedUpdatedAt uint64 `json:"totalStakedUpdatedAt"`
	CurrentEpoch         uint64 `json:"currentEpoch"`
	LatestNonce          uint64 `json:"latestNonce"`
}

type PoolResponse struct {
	ID               string  `json:"id"`
	State            string  `json:"state"`
	TotalStaked      string  `json:"totalStaked"`
	TotalUnstaked    string  `json:"totalUnstaked"`
	LastUnstakeEpoch *uint64 `json:"lastUnstakeEpoch,omitempty"`
	UnstakeAvailable bool    `json:"unstakeAvailable"`
	NextUnstakeEpoch uint64  `json:"nextUnstakeEpoch"`
}

type AllocationResponse struct {
	Recipient           string `json:"recipient"`
	Amount              string `json:"amount"`
	PriceNum            string `json:"priceNum"`
	PriceDenom          string `json:"priceDenom"`
	DistributableShares string `json:"distributableShares"`
	DistributableValue  string `json:"distributableValue"`
}

type ClaimableResponse struct {
	Nonce     uint64 `json:"nonce"`
	Claimable bool   `json:"claimable"`
}

type BalanceResponse struct {
	Account string `json:"account"`
	Balance string `json:"balance"`
}

type SupplyResponse struct {
	TotalSupply string `json:"totalSupply"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
}

func convertInfo(info staker.Info) *InfoResponse {
	return &InfoResponse{
		Owner:                info.Owner.String(),
		PendingOwner:         info.PendingOwner.String(),
		Treasury:             info.Treasury.String(),
		DefaultPool:          info.DefaultPool.String(),
		Paused:               info.Paused,
		Locked:               info.Locked,
		Fee:                  info.Fee,
		DistributionFee:      info.DistributionFee,
		MinDeposit:           info.MinDeposit.String(),
		TotalStaked:          info.TotalStaked.String(),
		TaxExemptStake:       info.TaxExemptStake.String(),
		WithdrawnAmount:      info.WithdrawnAmount.String(),
		TotalSupply:          info.TotalSupply.String(),
		TotalStakedUpdatedAt: info.TotalStakedUpdatedAt,
		CurrentEpoch:         info.CurrentEpoch,
		LatestNonce:          info.LatestNonce,
	}
}

func convertPools(infos []staker.PoolInfo) []*PoolResponse {
	out := make([]*PoolResponse, 0, len(infos))
	for _, info := range infos {
		out = append(out, &PoolResponse{
			ID:               info.ID.String(),
			State:            info.State.String(),
			TotalStaked:      info.TotalStaked.String(),
			TotalUnstaked:    info.TotalUnstaked.String(),
			LastUnstakeEpoch: info.LastUnstakeEpoch,
			UnstakeAvailable: info.UnstakeAvailable,
			NextUnstakeEpoch: info.NextUnstakeEpoch,
		})
	}
	return out
}

func convertAllocations(infos []staker.AllocationInfo) []*AllocationResponse {
	out := make([]*AllocationResponse, 0, len(infos))
	for _, info := range infos {
		out = append(out, &AllocationResponse{
			Recipient:           info.Recipient.String(),
			Amount:              info.Amount.String(),
			PriceNum:            info.PriceNum.String(),
			PriceDenom:          info.PriceDenom.String(),
			DistributableShares: info.DistributableShares.String(),
			DistributableValue:  info.DistributableValue.String(),
		})
	}
	return out
}

// parseAmount parses a decimal yocto amount; empty means zero.
func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, errors.Errorf("invalid amount: %q", s)
	}
	return v, nil
}
