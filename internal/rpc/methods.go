package rpc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/LeJamon/marketd/internal/core/ledger"
	"github.com/LeJamon/marketd/internal/core/market"
	"github.com/LeJamon/marketd/internal/crypto"
)

func (s *Server) registerMethods() {
	s.methods = map[string]methodFunc{
		"market_listItem":      s.listItem,
		"market_updateListing": s.updateListing,
		"market_cancelListing": s.cancelListing,
		"market_buyItem":       s.buyItem,
		"market_makeOffer":     s.makeOffer,
		"market_cancelOffer":   s.cancelOffer,
		"market_acceptOffer":   s.acceptOffer,
		"market_getListing":    s.getListing,
		"market_getOffer":      s.getOffer,
		"market_getFee":        s.getFee,
		"market_setFee":        s.setFee,
		"market_balance":       s.balance,
		"market_withdraw":      s.withdraw,
		"admin_mint":           s.adminMint,
		"admin_approve":        s.adminApprove,
		"admin_deposit":        s.adminDeposit,
		"journal_operations":   s.journalOperations,
		"journal_settlements":  s.journalSettlements,
		"server_info":          s.serverInfo,
		"ping":                 s.ping,
	}
}

func parseAccount(s, field string) (crypto.AccountID, *RpcError) {
	id, err := crypto.ParseAccountID(s)
	if err != nil {
		return crypto.AccountID{}, errInvalidParams("invalid " + field)
	}
	return id, nil
}

func decodeParams(params json.RawMessage, dst interface{}) *RpcError {
	if len(params) == 0 {
		return errInvalidParams("params required")
	}
	if err := json.Unmarshal(params, dst); err != nil {
		return errInvalidParams("malformed params: " + err.Error())
	}
	return nil
}

// resultOrError converts an engine result into an RPC response.
func resultOrError(result market.Result) (interface{}, *RpcError) {
	if !result.IsSuccess() {
		return nil, errMarket(result)
	}
	return map[string]interface{}{"status": "success"}, nil
}

type tokenParams struct {
	Asset   string `json:"asset"`
	TokenID uint64 `json:"token_id"`
	Caller  string `json:"caller"`
}

func (s *Server) listItem(params json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		tokenParams
		Price uint64 `json:"price"`
	}
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	asset, rpcErr := parseAccount(p.Asset, "asset")
	if rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAccount(p.Caller, "caller")
	if rpcErr != nil {
		return nil, rpcErr
	}
	return resultOrError(s.engine.ListItem(asset, p.TokenID, p.Price, caller))
}

func (s *Server) updateListing(params json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		tokenParams
		NewPrice uint64 `json:"new_price"`
	}
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	asset, rpcErr := parseAccount(p.Asset, "asset")
	if rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAccount(p.Caller, "caller")
	if rpcErr != nil {
		return nil, rpcErr
	}
	return resultOrError(s.engine.UpdateListing(asset, p.TokenID, p.NewPrice, caller))
}

func (s *Server) cancelListing(params json.RawMessage) (interface{}, *RpcError) {
	var p tokenParams
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	asset, rpcErr := parseAccount(p.Asset, "asset")
	if rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAccount(p.Caller, "caller")
	if rpcErr != nil {
		return nil, rpcErr
	}
	return resultOrError(s.engine.CancelListing(asset, p.TokenID, caller))
}

func (s *Server) buyItem(params json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		tokenParams
		PaidAmount       uint64 `json:"paid_amount"`
		Authorization    string `json:"authorization"`
		CollectionOwner  string `json:"collection_owner"`
		CollectionFeeBps uint32 `json:"collection_fee_bps"`
	}
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	asset, rpcErr := parseAccount(p.Asset, "asset")
	if rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAccount(p.Caller, "caller")
	if rpcErr != nil {
		return nil, rpcErr
	}
	collectionOwner, rpcErr := parseAccount(p.CollectionOwner, "collection_owner")
	if rpcErr != nil {
		return nil, rpcErr
	}
	return resultOrError(s.engine.BuyItem(asset, p.TokenID, p.PaidAmount, p.Authorization, collectionOwner, p.CollectionFeeBps, caller))
}

func (s *Server) makeOffer(params json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		tokenParams
		OfferPrice   uint64 `json:"offer_price"`
		StakedAmount uint64 `json:"staked_amount"`
	}
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	asset, rpcErr := parseAccount(p.Asset, "asset")
	if rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAccount(p.Caller, "caller")
	if rpcErr != nil {
		return nil, rpcErr
	}
	return resultOrError(s.engine.MakeOffer(asset, p.TokenID, p.OfferPrice, p.StakedAmount, caller))
}

func (s *Server) cancelOffer(params json.RawMessage) (interface{}, *RpcError) {
	var p tokenParams
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	asset, rpcErr := parseAccount(p.Asset, "asset")
	if rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAccount(p.Caller, "caller")
	if rpcErr != nil {
		return nil, rpcErr
	}
	return resultOrError(s.engine.CancelOffer(asset, p.TokenID, caller))
}

func (s *Server) acceptOffer(params json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		tokenParams
		Authorization    string `json:"authorization"`
		CollectionOwner  string `json:"collection_owner"`
		CollectionFeeBps uint32 `json:"collection_fee_bps"`
		Offerer          string `json:"offerer"`
	}
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	asset, rpcErr := parseAccount(p.Asset, "asset")
	if rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAccount(p.Caller, "caller")
	if rpcErr != nil {
		return nil, rpcErr
	}
	collectionOwner, rpcErr := parseAccount(p.CollectionOwner, "collection_owner")
	if rpcErr != nil {
		return nil, rpcErr
	}
	offerer, rpcErr := parseAccount(p.Offerer, "offerer")
	if rpcErr != nil {
		return nil, rpcErr
	}
	return resultOrError(s.engine.AcceptOffer(asset, p.TokenID, p.Authorization, collectionOwner, p.CollectionFeeBps, offerer, caller))
}

func (s *Server) getListing(params json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		Asset   string `json:"asset"`
		TokenID uint64 `json:"token_id"`
	}
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	asset, rpcErr := parseAccount(p.Asset, "asset")
	if rpcErr != nil {
		return nil, rpcErr
	}

	listing, err := s.engine.GetListing(asset, p.TokenID)
	if err != nil {
		return nil, errInternal(err.Error())
	}
	if listing == nil {
		return map[string]interface{}{"listed": false}, nil
	}
	return map[string]interface{}{
		"listed": true,
		"price":  listing.Price,
		"seller": listing.Seller.String(),
	}, nil
}

func (s *Server) getOffer(params json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		Asset   string `json:"asset"`
		TokenID uint64 `json:"token_id"`
		Offerer string `json:"offerer"`
	}
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	asset, rpcErr := parseAccount(p.Asset, "asset")
	if rpcErr != nil {
		return nil, rpcErr
	}
	offerer, rpcErr := parseAccount(p.Offerer, "offerer")
	if rpcErr != nil {
		return nil, rpcErr
	}

	amount, err := s.engine.GetOffer(asset, p.TokenID, offerer)
	if err != nil {
		return nil, errInternal(err.Error())
	}
	return map[string]interface{}{"amount": amount}, nil
}

func (s *Server) getFee(json.RawMessage) (interface{}, *RpcError) {
	fee, err := s.engine.MarketplaceFee()
	if err != nil {
		return nil, errInternal(err.Error())
	}
	return map[string]interface{}{"fee_bps": fee}, nil
}

func (s *Server) setFee(params json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		FeeBps uint32 `json:"fee_bps"`
		Caller string `json:"caller"`
	}
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAccount(p.Caller, "caller")
	if rpcErr != nil {
		return nil, rpcErr
	}
	return resultOrError(s.engine.SetMarketplaceFee(p.FeeBps, caller))
}

func (s *Server) balance(params json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		Account string `json:"account"`
	}
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	account, rpcErr := parseAccount(p.Account, "account")
	if rpcErr != nil {
		return nil, rpcErr
	}

	balance, err := s.engine.Balance(account)
	if err != nil {
		return nil, errInternal(err.Error())
	}
	return map[string]interface{}{"balance": balance}, nil
}

func (s *Server) withdraw(params json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		Caller string `json:"caller"`
	}
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAccount(p.Caller, "caller")
	if rpcErr != nil {
		return nil, rpcErr
	}

	amount, result := s.engine.Withdraw(caller)
	if !result.IsSuccess() {
		return nil, errMarket(result)
	}
	return map[string]interface{}{"amount": amount}, nil
}

func (s *Server) adminMint(params json.RawMessage) (interface{}, *RpcError) {
	if !s.adminEnabled {
		return nil, errForbidden()
	}
	var p struct {
		Asset   string `json:"asset"`
		TokenID uint64 `json:"token_id"`
		Owner   string `json:"owner"`
	}
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	asset, rpcErr := parseAccount(p.Asset, "asset")
	if rpcErr != nil {
		return nil, rpcErr
	}
	owner, rpcErr := parseAccount(p.Owner, "owner")
	if rpcErr != nil {
		return nil, rpcErr
	}

	if err := s.applyAdmin(func(view ledger.View) error {
		return s.reg.Mint(view, asset, p.TokenID, owner)
	}); err != nil {
		return nil, errInternal(err.Error())
	}
	return map[string]interface{}{"status": "success"}, nil
}

func (s *Server) adminApprove(params json.RawMessage) (interface{}, *RpcError) {
	if !s.adminEnabled {
		return nil, errForbidden()
	}
	var p struct {
		Asset    string `json:"asset"`
		TokenID  uint64 `json:"token_id"`
		Operator string `json:"operator"`
		Caller   string `json:"caller"`
	}
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	asset, rpcErr := parseAccount(p.Asset, "asset")
	if rpcErr != nil {
		return nil, rpcErr
	}
	operator, rpcErr := parseAccount(p.Operator, "operator")
	if rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parseAccount(p.Caller, "caller")
	if rpcErr != nil {
		return nil, rpcErr
	}

	if err := s.applyAdmin(func(view ledger.View) error {
		return s.reg.Approve(view, asset, p.TokenID, operator, caller)
	}); err != nil {
		return nil, errInternal(err.Error())
	}
	return map[string]interface{}{"status": "success"}, nil
}

func (s *Server) adminDeposit(params json.RawMessage) (interface{}, *RpcError) {
	if !s.adminEnabled {
		return nil, errForbidden()
	}
	var p struct {
		Account string `json:"account"`
		Amount  uint64 `json:"amount"`
	}
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	account, rpcErr := parseAccount(p.Account, "account")
	if rpcErr != nil {
		return nil, rpcErr
	}
	return resultOrError(s.engine.Deposit(account, p.Amount))
}

// applyAdmin runs a registry mutation in its own state table, serialized
// against other admin calls.
func (s *Server) applyAdmin(fn func(view ledger.View) error) error {
	s.adminMu.Lock()
	defer s.adminMu.Unlock()

	table := ledger.NewStateTable(s.store)
	if err := fn(table); err != nil {
		return err
	}
	_, err := table.Apply()
	return err
}

func (s *Server) journalOperations(params json.RawMessage) (interface{}, *RpcError) {
	if s.journal == nil {
		return nil, errInvalidRequest("journal is disabled")
	}
	limit := 50
	if len(params) > 0 {
		var p struct {
			Limit int `json:"limit"`
		}
		if err := json.Unmarshal(params, &p); err == nil && p.Limit > 0 {
			limit = p.Limit
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	records, err := s.journal.Operations(ctx, limit)
	if err != nil {
		return nil, errInternal(err.Error())
	}
	return map[string]interface{}{"operations": records}, nil
}

func (s *Server) journalSettlements(params json.RawMessage) (interface{}, *RpcError) {
	if s.journal == nil {
		return nil, errInvalidRequest("journal is disabled")
	}
	limit := 50
	if len(params) > 0 {
		var p struct {
			Limit int `json:"limit"`
		}
		if err := json.Unmarshal(params, &p); err == nil && p.Limit > 0 {
			limit = p.Limit
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	records, err := s.journal.Settlements(ctx, limit)
	if err != nil {
		return nil, errInternal(err.Error())
	}
	return map[string]interface{}{"settlements": records}, nil
}

func (s *Server) serverInfo(json.RawMessage) (interface{}, *RpcError) {
	fee, err := s.engine.MarketplaceFee()
	if err != nil {
		return nil, errInternal(err.Error())
	}
	return map[string]interface{}{
		"operator":  s.engine.Operator().String(),
		"market_id": s.engine.MarketID().String(),
		"fee_bps":   fee,
		"uptime":    time.Since(s.started).Round(time.Second).String(),
		"admin":     s.adminEnabled,
	}, nil
}

func (s *Server) ping(json.RawMessage) (interface{}, *RpcError) {
	return map[string]interface{}{}, nil
}
