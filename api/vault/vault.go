// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package vault exposes the staking operations and views over REST.
//
// Settlement endpoints dispatch the operation and wait for its receipt, so a
// 200 means the continuation has run and the lock is released.
package vault

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/trustake/staker/api/utils"
	"github.com/trustake/staker/near"
	"github.com/trustake/staker/staker"
	"github.com/trustake/staker/staker/pool"
	"github.com/trustake/staker/staker/token"
)

type Vault struct {
	staker *staker.Staker
}

func New(s *staker.Staker) *Vault {
	return &Vault{staker: s}
}

// asHTTPError maps vault errors onto http statuses.
func asHTTPError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, staker.ErrLocked):
		return utils.Conflict(err)
	case errors.Is(err, staker.ErrPaused),
		errors.Is(err, staker.ErrNotWhitelisted),
		errors.Is(err, staker.ErrNotOwner),
		errors.Is(err, staker.ErrNotAgent),
		errors.Is(err, staker.ErrNotRequestOwner):
		return utils.Forbidden(err)
	case errors.Is(err, staker.ErrInvalidNonce), errors.Is(err, pool.ErrNotFound):
		return utils.NotFound(err)
	default:
		return utils.BadRequest(err)
	}
}

// await blocks until the settlement receipt resolves or the request is
// cancelled.
func await(req *http.Request, r *staker.Receipt) error {
	select {
	case <-r.Done():
	case <-req.Context().Done():
		return utils.HTTPError(req.Context().Err(), http.StatusRequestTimeout)
	}
	if err := r.Err(); err != nil {
		return utils.HTTPError(err, http.StatusBadGateway)
	}
	return nil
}

func settlementResponse(w http.ResponseWriter, r *staker.Receipt) error {
	res := &SettlementResponse{Nonce: r.Nonce()}
	if r.Amount() != nil {
		res.Amount = r.Amount().String()
	}
	return utils.WriteJSON(w, res)
}

func (v *Vault) handleStake(w http.ResponseWriter, req *http.Request) error {
	var body StakeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := parseAmount(body.Amount)
	if err != nil {
		return utils.BadRequest(err)
	}
	r, err := v.staker.StakeToPool(near.AccountID(body.Caller), near.AccountID(body.Pool), amount)
	if err != nil {
		return asHTTPError(err)
	}
	if err := await(req, r); err != nil {
		return err
	}
	return settlementResponse(w, r)
}

func (v *Vault) handleUnstake(w http.ResponseWriter, req *http.Request) error {
	var body UnstakeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := parseAmount(body.Amount)
	if err != nil {
		return utils.BadRequest(err)
	}
	deposit, err := parseAmount(body.Deposit)
	if err != nil {
		return utils.BadRequest(err)
	}
	r, err := v.staker.UnstakeFromPool(near.AccountID(body.Caller), near.AccountID(body.Pool), amount, deposit)
	if err != nil {
		return asHTTPError(err)
	}
	if err := await(req, r); err != nil {
		return err
	}
	return settlementResponse(w, r)
}

func (v *Vault) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	var body WithdrawRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	r, err := v.staker.Withdraw(near.AccountID(body.Caller), body.Nonce)
	if err != nil {
		return asHTTPError(err)
	}
	if err := await(req, r); err != nil {
		return err
	}
	return settlementResponse(w, r)
}

func (v *Vault) handleRefresh(w http.ResponseWriter, req *http.Request) error {
	r, err := v.staker.Refresh()
	if err != nil {
		return asHTTPError(err)
	}
	if err := await(req, r); err != nil {
		return err
	}
	return settlementResponse(w, r)
}

func (v *Vault) handleCollectFees(w http.ResponseWriter, req *http.Request) error {
	var body CollectFeesRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	shares, err := v.staker.CollectFees(near.AccountID(body.Caller))
	if err != nil {
		return asHTTPError(err)
	}
	return utils.WriteJSON(w, &SettlementResponse{Amount: shares.String()})
}

func (v *Vault) handleAllocate(w http.ResponseWriter, req *http.Request) error {
	var body AllocateRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := parseAmount(body.Amount)
	if err != nil {
		return utils.BadRequest(err)
	}
	deposit, err := parseAmount(body.Deposit)
	if err != nil {
		return utils.BadRequest(err)
	}
	if err := v.staker.Allocate(near.AccountID(body.Caller), near.AccountID(body.Recipient), amount, deposit); err != nil {
		return asHTTPError(err)
	}
	return utils.WriteJSON(w, utils.M{"allocated": amount.String()})
}

func (v *Vault) handleDeallocate(w http.ResponseWriter, req *http.Request) error {
	var body DeallocateRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := parseAmount(body.Amount)
	if err != nil {
		return utils.BadRequest(err)
	}
	if err := v.staker.Deallocate(near.AccountID(body.Caller), near.AccountID(body.Recipient), amount); err != nil {
		return asHTTPError(err)
	}
	return utils.WriteJSON(w, utils.M{"deallocated": amount.String()})
}

func (v *Vault) handleDistribute(w http.ResponseWriter, req *http.Request) error {
	var body DistributeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	deposit, err := parseAmount(body.Deposit)
	if err != nil {
		return utils.BadRequest(err)
	}
	paid, err := v.staker.DistributeRewards(near.AccountID(body.Caller), near.AccountID(body.Recipient), body.InAsset, deposit)
	if err != nil {
		return asHTTPError(err)
	}
	return utils.WriteJSON(w, &SettlementResponse{Amount: paid.String()})
}

func (v *Vault) handleDistributeAll(w http.ResponseWriter, req *http.Request) error {
	var body DistributeAllRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	deposit, err := parseAmount(body.Deposit)
	if err != nil {
		return utils.BadRequest(err)
	}
	paid, err := v.staker.DistributeAll(near.AccountID(body.Caller), body.InAsset, deposit)
	if err != nil {
		return asHTTPError(err)
	}
	return utils.WriteJSON(w, &SettlementResponse{Amount: paid.String()})
}

func (v *Vault) handlePrice(w http.ResponseWriter, _ *http.Request) error {
	p := v.staker.SharePrice()
	return utils.WriteJSON(w, &PriceResponse{Num: p.Num.String(), Denom: p.Denom.String()})
}

func (v *Vault) handleInfo(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, convertInfo(v.staker.Info()))
}

func (v *Vault) handlePools(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, convertPools(v.staker.Pools()))
}

func (v *Vault) handleMaxWithdraw(w http.ResponseWriter, req *http.Request) error {
	account := mux.Vars(req)["account"]
	if account == "" {
		return utils.BadRequest(errors.New("account is required"))
	}
	max := v.staker.MaxWithdraw(near.AccountID(account))
	return utils.WriteJSON(w, &BalanceResponse{Account: account, Balance: max.String()})
}

func (v *Vault) handleAllocations(w http.ResponseWriter, req *http.Request) error {
	account := mux.Vars(req)["account"]
	if account == "" {
		return utils.BadRequest(errors.New("account is required"))
	}
	return utils.WriteJSON(w, convertAllocations(v.staker.Allocations(near.AccountID(account))))
}

func (v *Vault) handleClaimable(w http.ResponseWriter, req *http.Request) error {
	nonce, err := strconv.ParseUint(mux.Vars(req)["nonce"], 10, 64)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "nonce"))
	}
	return utils.WriteJSON(w, &ClaimableResponse{Nonce: nonce, Claimable: v.staker.IsClaimable(nonce)})
}

func (v *Vault) handleTokenBalance(w http.ResponseWriter, req *http.Request) error {
	account := mux.Vars(req)["account"]
	if account == "" {
		return utils.BadRequest(errors.New("account is required"))
	}
	balance := v.staker.ShareBalanceOf(near.AccountID(account))
	return utils.WriteJSON(w, &BalanceResponse{Account: account, Balance: balance.String()})
}

func (v *Vault) handleTokenSupply(w http.ResponseWriter, _ *http.Request) error {
	meta := token.Meta()
	return utils.WriteJSON(w, &SupplyResponse{
		TotalSupply: v.staker.ShareSupply().String(),
		Name:        meta.Name,
		Symbol:      meta.Symbol,
		Decimals:    meta.Decimals,
	})
}

func (v *Vault) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/stake").
		Methods(http.MethodPost).
		Name("vault_stake").
		HandlerFunc(utils.WrapHandlerFunc(v.handleStake))
	sub.Path("/unstake").
		Methods(http.MethodPost).
		Name("vault_unstake").
		HandlerFunc(utils.WrapHandlerFunc(v.handleUnstake))
	sub.Path("/withdraw").
		Methods(http.MethodPost).
		Name("vault_withdraw").
		HandlerFunc(utils.WrapHandlerFunc(v.handleWithdraw))
	sub.Path("/refresh").
		Methods(http.MethodPost).
		Name("vault_refresh").
		HandlerFunc(utils.WrapHandlerFunc(v.handleRefresh))
	sub.Path("/collect-fees").
		Methods(http.MethodPost).
		Name("vault_collect_fees").
		HandlerFunc(utils.WrapHandlerFunc(v.handleCollectFees))
	sub.Path("/allocate").
		Methods(http.MethodPost).
		Name("vault_allocate").
		HandlerFunc(utils.WrapHandlerFunc(v.handleAllocate))
	sub.Path("/deallocate").
		Methods(http.MethodPost).
		Name("vault_deallocate").
		HandlerFunc(utils.WrapHandlerFunc(v.handleDeallocate))
	sub.Path("/distribute").
		Methods(http.MethodPost).
		Name("vault_distribute").
		HandlerFunc(utils.WrapHandlerFunc(v.handleDistribute))
	sub.Path("/distribute-all").
		Methods(http.MethodPost).
		Name("vault_distribute_all").
		HandlerFunc(utils.WrapHandlerFunc(v.handleDistributeAll))

	sub.Path("/price").
		Methods(http.MethodGet).
		Name("vault_get_price").
		HandlerFunc(utils.WrapHandlerFunc(v.handlePrice))
	sub.Path("/info").
		Methods(http.MethodGet).
		Name("vault_get_info").
		HandlerFunc(utils.WrapHandlerFunc(v.handleInfo))
	sub.Path("/pools").
		Methods(http.MethodGet).
		Name("vault_get_pools").
		HandlerFunc(utils.WrapHandlerFunc(v.handlePools))
	sub.Path("/max-withdraw/{account}").
		Methods(http.MethodGet).
		Name("vault_get_max_withdraw").
		HandlerFunc(utils.WrapHandlerFunc(v.handleMaxWithdraw))
	sub.Path("/allocations/{account}").
		Methods(http.MethodGet).
		Name("vault_get_allocations").
		HandlerFunc(utils.WrapHandlerFunc(v.handleAllocations))
	sub.Path("/claimable/{nonce}").
		Methods(http.MethodGet).
		Name("vault_get_claimable").
		HandlerFunc(utils.WrapHandlerFunc(v.handleClaimable))
}

// MountToken exposes the share token surface.
func (v *Vault) MountToken(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/balance/{account}").
		Methods(http.MethodGet).
		Name("token_get_balance").
		HandlerFunc(utils.WrapHandlerFunc(v.handleTokenBalance))
	sub.Path("/supply").
		Methods(http.MethodGet).
		Name("token_get_supply").
		HandlerFunc(utils.WrapHandlerFunc(v.handleTokenSupply))
}
