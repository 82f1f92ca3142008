// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package admin exposes the owner/agent gated administrative surface.
// Authorization happens in the vault against the caller account carried in
// the request body, mirroring the contract-side checks.
package admin

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/trustake/staker/api/utils"
	"github.com/trustake/staker/near"
	"github.com/trustake/staker/staker"
)

type Admin struct {
	staker *staker.Staker
}

func New(s *staker.Staker) *Admin {
	return &Admin{staker: s}
}

type CallerRequest struct {
	Caller string `json:"caller"`
}

type FeeRequest struct {
	Caller string `json:"caller"`
	Fee    uint64 `json:"fee"`
}

type AmountRequest struct {
	Caller string `json:"caller"`
	Amount string `json:"amount"`
}

type AccountRequest struct {
	Caller  string `json:"caller"`
	Account string `json:"account"`
}

type StatusRequest struct {
	Caller  string `json:"caller"`
	Account string `json:"account"`
	Status  string `json:"status"`
}

func asHTTPError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, staker.ErrNotOwner),
		errors.Is(err, staker.ErrNotAgent),
		errors.Is(err, staker.ErrNotPendingOwner):
		return utils.Forbidden(err)
	default:
		return utils.BadRequest(err)
	}
}

func writeOK(w http.ResponseWriter) error {
	return utils.WriteJSON(w, utils.M{"ok": true})
}

func (a *Admin) caller(req *http.Request) (near.AccountID, error) {
	var body CallerRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return "", utils.BadRequest(errors.WithMessage(err, "body"))
	}
	return near.AccountID(body.Caller), nil
}

func (a *Admin) handlePause(w http.ResponseWriter, req *http.Request) error {
	caller, err := a.caller(req)
	if err != nil {
		return err
	}
	if err := a.staker.Pause(caller); err != nil {
		return asHTTPError(err)
	}
	return writeOK(w)
}

func (a *Admin) handleUnpause(w http.ResponseWriter, req *http.Request) error {
	caller, err := a.caller(req)
	if err != nil {
		return err
	}
	if err := a.staker.Unpause(caller); err != nil {
		return asHTTPError(err)
	}
	return writeOK(w)
}

func (a *Admin) handleUnlock(w http.ResponseWriter, req *http.Request) error {
	caller, err := a.caller(req)
	if err != nil {
		return err
	}
	if err := a.staker.ManualUnlock(caller); err != nil {
		return asHTTPError(err)
	}
	return writeOK(w)
}

func (a *Admin) handleSetFee(w http.ResponseWriter, req *http.Request) error {
	var body FeeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := a.staker.SetFee(near.AccountID(body.Caller), body.Fee); err != nil {
		return asHTTPError(err)
	}
	return writeOK(w)
}

func (a *Admin) handleSetDistributionFee(w http.ResponseWriter, req *http.Request) error {
	var body FeeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := a.staker.SetDistributionFee(near.AccountID(body.Caller), body.Fee); err != nil {
		return asHTTPError(err)
	}
	return writeOK(w)
}

func (a *Admin) handleSetMinDeposit(w http.ResponseWriter, req *http.Request) error {
	var body AmountRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, parsed := new(big.Int).SetString(body.Amount, 10)
	if !parsed {
		return utils.BadRequest(errors.Errorf("invalid amount: %q", body.Amount))
	}
	if err := a.staker.SetMinDeposit(near.AccountID(body.Caller), amount); err != nil {
		return asHTTPError(err)
	}
	return writeOK(w)
}

func (a *Admin) handleSetTreasury(w http.ResponseWriter, req *http.Request) error {
	var body AccountRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := a.staker.SetTreasury(near.AccountID(body.Caller), near.AccountID(body.Account)); err != nil {
		return asHTTPError(err)
	}
	return writeOK(w)
}

func (a *Admin) handleSetDefaultPool(w http.ResponseWriter, req *http.Request) error {
	var body AccountRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := a.staker.SetDefaultPool(near.AccountID(body.Caller), near.AccountID(body.Account)); err != nil {
		return asHTTPError(err)
	}
	return writeOK(w)
}

func (a *Admin) handleEnablePool(w http.ResponseWriter, req *http.Request) error {
	caller, err := a.caller(req)
	if err != nil {
		return err
	}
	id := near.AccountID(mux.Vars(req)["id"])
	if err := a.staker.EnablePool(caller, id); err != nil {
		return asHTTPError(err)
	}
	return writeOK(w)
}

func (a *Admin) handleDisablePool(w http.ResponseWriter, req *http.Request) error {
	caller, err := a.caller(req)
	if err != nil {
		return err
	}
	id := near.AccountID(mux.Vars(req)["id"])
	if err := a.staker.DisablePool(caller, id); err != nil {
		return asHTTPError(err)
	}
	return writeOK(w)
}

func (a *Admin) handleTransferOwnership(w http.ResponseWriter, req *http.Request) error {
	var body AccountRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := a.staker.TransferOwnership(near.AccountID(body.Caller), near.AccountID(body.Account)); err != nil {
		return asHTTPError(err)
	}
	return writeOK(w)
}

func (a *Admin) handleClaimOwnership(w http.ResponseWriter, req *http.Request) error {
	caller, err := a.caller(req)
	if err != nil {
		return err
	}
	if err := a.staker.ClaimOwnership(caller); err != nil {
		return asHTTPError(err)
	}
	return writeOK(w)
}

func (a *Admin) handleAddAgent(w http.ResponseWriter, req *http.Request) error {
	var body AccountRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := a.staker.AddAgent(near.AccountID(body.Caller), near.AccountID(body.Account)); err != nil {
		return asHTTPError(err)
	}
	return writeOK(w)
}

func (a *Admin) handleRemoveAgent(w http.ResponseWriter, req *http.Request) error {
	var body AccountRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := a.staker.RemoveAgent(near.AccountID(body.Caller), near.AccountID(body.Account)); err != nil {
		return asHTTPError(err)
	}
	return writeOK(w)
}

func (a *Admin) handleSetUserStatus(w http.ResponseWriter, req *http.Request) error {
	var body StatusRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	var status staker.UserStatus
	switch body.Status {
	case "WHITELISTED":
		status = staker.StatusWhitelisted
	case "BLACKLISTED":
		status = staker.StatusBlacklisted
	case "NO_STATUS":
		status = staker.StatusNone
	default:
		return utils.BadRequest(errors.Errorf("invalid status: %q", body.Status))
	}
	if err := a.staker.SetUserStatus(near.AccountID(body.Caller), near.AccountID(body.Account), status); err != nil {
		return asHTTPError(err)
	}
	return writeOK(w)
}

func (a *Admin) handleAgents(w http.ResponseWriter, _ *http.Request) error {
	agents := a.staker.Agents()
	out := make([]string, 0, len(agents))
	for _, id := range agents {
		out = append(out, id.String())
	}
	return utils.WriteJSON(w, out)
}

func (a *Admin) handleUserStatus(w http.ResponseWriter, req *http.Request) error {
	account := mux.Vars(req)["account"]
	status := a.staker.UserStatusOf(near.AccountID(account))
	return utils.WriteJSON(w, utils.M{"account": account, "status": status.String()})
}

func (a *Admin) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/pause").Methods(http.MethodPost).
		Name("admin_pause").
		HandlerFunc(utils.WrapHandlerFunc(a.handlePause))
	sub.Path("/unpause").Methods(http.MethodPost).
		Name("admin_unpause").
		HandlerFunc(utils.WrapHandlerFunc(a.handleUnpause))
	sub.Path("/unlock").Methods(http.MethodPost).
		Name("admin_unlock").
		HandlerFunc(utils.WrapHandlerFunc(a.handleUnlock))
	sub.Path("/fee").Methods(http.MethodPost).
		Name("admin_set_fee").
		HandlerFunc(utils.WrapHandlerFunc(a.handleSetFee))
	sub.Path("/distribution-fee").Methods(http.MethodPost).
		Name("admin_set_distribution_fee").
		HandlerFunc(utils.WrapHandlerFunc(a.handleSetDistributionFee))
	sub.Path("/min-deposit").Methods(http.MethodPost).
		Name("admin_set_min_deposit").
		HandlerFunc(utils.WrapHandlerFunc(a.handleSetMinDeposit))
	sub.Path("/treasury").Methods(http.MethodPost).
		Name("admin_set_treasury").
		HandlerFunc(utils.WrapHandlerFunc(a.handleSetTreasury))
	sub.Path("/default-pool").Methods(http.MethodPost).
		Name("admin_set_default_pool").
		HandlerFunc(utils.WrapHandlerFunc(a.handleSetDefaultPool))
	sub.Path("/pools/{id}/enable").Methods(http.MethodPost).
		Name("admin_enable_pool").
		HandlerFunc(utils.WrapHandlerFunc(a.handleEnablePool))
	sub.Path("/pools/{id}/disable").Methods(http.MethodPost).
		Name("admin_disable_pool").
		HandlerFunc(utils.WrapHandlerFunc(a.handleDisablePool))
	sub.Path("/ownership/transfer").Methods(http.MethodPost).
		Name("admin_transfer_ownership").
		HandlerFunc(utils.WrapHandlerFunc(a.handleTransferOwnership))
	sub.Path("/ownership/claim").Methods(http.MethodPost).
		Name("admin_claim_ownership").
		HandlerFunc(utils.WrapHandlerFunc(a.handleClaimOwnership))
	sub.Path("/agents").Methods(http.MethodPost).
		Name("admin_add_agent").
		HandlerFunc(utils.WrapHandlerFunc(a.handleAddAgent))
	sub.Path("/agents/remove").Methods(http.MethodPost).
		Name("admin_remove_agent").
		HandlerFunc(utils.WrapHandlerFunc(a.handleRemoveAgent))
	sub.Path("/agents").Methods(http.MethodGet).
		Name("admin_get_agents").
		HandlerFunc(utils.WrapHandlerFunc(a.handleAgents))
	sub.Path("/whitelist").Methods(http.MethodPost).
		Name("admin_set_user_status").
		HandlerFunc(utils.WrapHandlerFunc(a.handleSetUserStatus))
	sub.Path("/whitelist/{account}").Methods(http.MethodGet).
		Name("admin_get_user_status").
		HandlerFunc(utils.WrapHandlerFunc(a.handleUserStatus))
}
