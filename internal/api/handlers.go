package api

import (
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"pairSwap/internal/amm"
	"pairSwap/internal/model"
	"pairSwap/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

type poolResponse struct {
	Pool           string `json:"pool"`
	AssetX         string `json:"asset_x"`
	AssetY         string `json:"asset_y"`
	FeeNumerator   uint64 `json:"fee_numerator"`
	FeeDenominator uint64 `json:"fee_denominator"`
	LockedMinimum  string `json:"locked_minimum"`
	TotalShares    string `json:"total_shares"`
	ReserveX       string `json:"reserve_x"`
	ReserveY       string `json:"reserve_y"`
	PriceX         string `json:"price_x,omitempty"`
	PriceY         string `json:"price_y,omitempty"`
	Holders        int    `json:"holders"`
}

type sharesResponse struct {
	Holder      string `json:"holder"`
	Shares      string `json:"shares"`
	TotalShares string `json:"total_shares"`
}

type priceResponse struct {
	Asset1  string `json:"asset1"`
	Asset2  string `json:"asset2"`
	Price   string `json:"price"`
	Decimal string `json:"price_decimal"`
}

type quoteResponse struct {
	AssetIn   string `json:"asset_in"`
	AssetOut  string `json:"asset_out"`
	AmountIn  string `json:"amount_in"`
	AmountOut string `json:"amount_out"`
}

type provideRequest struct {
	Caller         string `json:"caller" binding:"required"`
	Asset1         string `json:"asset1" binding:"required"`
	Asset2         string `json:"asset2" binding:"required"`
	Amount1Desired string `json:"amount1_desired" binding:"required"`
	Amount2Desired string `json:"amount2_desired" binding:"required"`
	Amount1Min     string `json:"amount1_min"`
	Amount2Min     string `json:"amount2_min"`
	Recipient      string `json:"recipient" binding:"required"`
	Deadline       int64  `json:"deadline" binding:"required"`
}

type provideResponse struct {
	Amount1 string `json:"amount1"`
	Amount2 string `json:"amount2"`
	Shares  string `json:"shares"`
}

type withdrawRequest struct {
	Caller     string `json:"caller" binding:"required"`
	Asset1     string `json:"asset1" binding:"required"`
	Asset2     string `json:"asset2" binding:"required"`
	Shares     string `json:"shares" binding:"required"`
	Amount1Min string `json:"amount1_min"`
	Amount2Min string `json:"amount2_min"`
	Recipient  string `json:"recipient" binding:"required"`
	Deadline   int64  `json:"deadline" binding:"required"`
}

type withdrawResponse struct {
	Amount1 string `json:"amount1"`
	Amount2 string `json:"amount2"`
}

type swapRequest struct {
	Caller       string   `json:"caller" binding:"required"`
	AmountIn     string   `json:"amount_in" binding:"required"`
	AmountOutMin string   `json:"amount_out_min"`
	Path         []string `json:"path" binding:"required"`
	Recipient    string   `json:"recipient" binding:"required"`
	Deadline     int64    `json:"deadline" binding:"required"`
}

type swapResponse struct {
	AmountIn  string `json:"amount_in"`
	AmountOut string `json:"amount_out"`
}

type fundRequest struct {
	Asset  string `json:"asset" binding:"required"`
	Holder string `json:"holder" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

func (s *Server) getPool(c *gin.Context) {
	ctx := c.Request.Context()
	state := s.engine.State()
	rx, ry, err := s.engine.Reserves(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	fee := s.engine.Fee()

	resp := poolResponse{
		Pool:           state.Pool,
		AssetX:         state.AssetX,
		AssetY:         state.AssetY,
		FeeNumerator:   fee.Numerator,
		FeeDenominator: fee.Denominator,
		LockedMinimum:  state.LockedMinimum,
		TotalShares:    state.TotalShares,
		ReserveX:       rx.String(),
		ReserveY:       ry.String(),
		Holders:        len(state.Shares),
	}
	if px, err := amm.Price(rx, ry); err == nil {
		resp.PriceX = model.FormatPrice(px)
	}
	if py, err := amm.Price(ry, rx); err == nil {
		resp.PriceY = model.FormatPrice(py)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getShares(c *gin.Context) {
	holder, err := model.ParseAddress(c.Param("holder"))
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, sharesResponse{
		Holder:      holder.Hex(),
		Shares:      s.engine.SharesOf(holder).String(),
		TotalShares: s.engine.TotalShares().String(),
	})
}

func (s *Server) getBalances(c *gin.Context) {
	holder, err := model.ParseAddress(c.Param("holder"))
	if err != nil {
		badRequest(c, err)
		return
	}
	if s.funder == nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: "custody ledger not available"})
		return
	}
	x, y := s.engine.Pair()
	out := make([]model.Balance, 0, 2)
	for _, asset := range []common.Address{x, y} {
		bal, err := s.funder.Balance(c.Request.Context(), asset, holder)
		if err != nil {
			s.fail(c, err)
			return
		}
		out = append(out, model.Balance{Asset: asset.Hex(), Holder: holder.Hex(), Amount: bal.String()})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getPrice(c *gin.Context) {
	asset1, err := model.ParseAddress(c.Query("asset1"))
	if err != nil {
		badRequest(c, fmt.Errorf("asset1: %w", err))
		return
	}
	asset2, err := model.ParseAddress(c.Query("asset2"))
	if err != nil {
		badRequest(c, fmt.Errorf("asset2: %w", err))
		return
	}
	price, err := s.engine.QuotePrice(c.Request.Context(), asset1, asset2)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, priceResponse{
		Asset1:  asset1.Hex(),
		Asset2:  asset2.Hex(),
		Price:   price.String(),
		Decimal: model.FormatPrice(price),
	})
}

func (s *Server) getQuote(c *gin.Context) {
	assetIn, err := model.ParseAddress(c.Query("asset_in"))
	if err != nil {
		badRequest(c, fmt.Errorf("asset_in: %w", err))
		return
	}
	assetOut, err := model.ParseAddress(c.Query("asset_out"))
	if err != nil {
		badRequest(c, fmt.Errorf("asset_out: %w", err))
		return
	}
	amountIn, err := model.ParseAmount(c.Query("amount_in"))
	if err != nil {
		badRequest(c, fmt.Errorf("amount_in: %w", err))
		return
	}
	out, err := s.engine.QuoteSwap(c.Request.Context(), assetIn, assetOut, amountIn)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, quoteResponse{
		AssetIn:   assetIn.Hex(),
		AssetOut:  assetOut.Hex(),
		AmountIn:  amountIn.String(),
		AmountOut: out.String(),
	})
}

func (s *Server) getOperations(c *gin.Context) {
	if s.opts.Journal == "" {
		c.JSON(http.StatusOK, []model.OperationRecord{})
		return
	}
	records, err := storage.ReadJournal(s.opts.Journal)
	if err != nil {
		s.fail(c, err)
		return
	}
	if records == nil {
		records = []model.OperationRecord{}
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) provide(c *gin.Context) {
	var body provideRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	addrs, err := parseAddresses(body.Caller, body.Asset1, body.Asset2, body.Recipient)
	if err != nil {
		badRequest(c, err)
		return
	}
	amounts, err := parseAmounts(body.Amount1Desired, body.Amount2Desired, body.Amount1Min, body.Amount2Min)
	if err != nil {
		badRequest(c, err)
		return
	}

	res, err := s.engine.ProvideLiquidity(c.Request.Context(), amm.ProvideRequest{
		Caller:    addrs[0],
		Asset1:    addrs[1],
		Asset2:    addrs[2],
		Desired1:  amounts[0],
		Desired2:  amounts[1],
		Min1:      amounts[2],
		Min2:      amounts[3],
		Recipient: addrs[3],
		Deadline:  time.Unix(body.Deadline, 0),
	})
	s.countOperation(model.OpProvide, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.refreshGauges(c.Request.Context())
	c.JSON(http.StatusOK, provideResponse{
		Amount1: res.Amount1.String(),
		Amount2: res.Amount2.String(),
		Shares:  res.Shares.String(),
	})
}

func (s *Server) withdraw(c *gin.Context) {
	var body withdrawRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	addrs, err := parseAddresses(body.Caller, body.Asset1, body.Asset2, body.Recipient)
	if err != nil {
		badRequest(c, err)
		return
	}
	amounts, err := parseAmounts(body.Shares, body.Amount1Min, body.Amount2Min)
	if err != nil {
		badRequest(c, err)
		return
	}

	res, err := s.engine.WithdrawLiquidity(c.Request.Context(), amm.WithdrawRequest{
		Caller:    addrs[0],
		Asset1:    addrs[1],
		Asset2:    addrs[2],
		Shares:    amounts[0],
		Min1:      amounts[1],
		Min2:      amounts[2],
		Recipient: addrs[3],
		Deadline:  time.Unix(body.Deadline, 0),
	})
	s.countOperation(model.OpWithdraw, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.refreshGauges(c.Request.Context())
	c.JSON(http.StatusOK, withdrawResponse{Amount1: res.Amount1.String(), Amount2: res.Amount2.String()})
}

func (s *Server) swap(c *gin.Context) {
	var body swapRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	addrs, err := parseAddresses(body.Caller, body.Recipient)
	if err != nil {
		badRequest(c, err)
		return
	}
	path, err := parseAddresses(body.Path...)
	if err != nil {
		badRequest(c, fmt.Errorf("path: %w", err))
		return
	}
	amounts, err := parseAmounts(body.AmountIn, body.AmountOutMin)
	if err != nil {
		badRequest(c, err)
		return
	}

	res, err := s.engine.SwapExactIn(c.Request.Context(), amm.SwapRequest{
		Caller:       addrs[0],
		AmountIn:     amounts[0],
		MinAmountOut: amounts[1],
		Path:         path,
		Recipient:    addrs[1],
		Deadline:     time.Unix(body.Deadline, 0),
	})
	s.countOperation(model.OpSwap, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.refreshGauges(c.Request.Context())
	c.JSON(http.StatusOK, swapResponse{AmountIn: res.AmountIn.String(), AmountOut: res.AmountOut.String()})
}

func (s *Server) fund(c *gin.Context) {
	if s.funder == nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: "custody ledger not available"})
		return
	}
	var body fundRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	addrs, err := parseAddresses(body.Asset, body.Holder)
	if err != nil {
		badRequest(c, err)
		return
	}
	amount, err := model.ParseAmount(body.Amount)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := s.funder.Deposit(c.Request.Context(), addrs[0], addrs[1], amount); err != nil {
		badRequest(c, err)
		return
	}
	bal, err := s.funder.Balance(c.Request.Context(), addrs[0], addrs[1])
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Balance{Asset: addrs[0].Hex(), Holder: addrs[1].Hex(), Amount: bal.String()})
}

func parseAddresses(values ...string) ([]common.Address, error) {
	out := make([]common.Address, 0, len(values))
	for _, v := range values {
		addr, err := model.ParseAddress(v)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

func parseAmounts(values ...string) ([]*big.Int, error) {
	out := make([]*big.Int, 0, len(values))
	for _, v := range values {
		amount, err := model.ParseAmount(v)
		if err != nil {
			return nil, err
		}
		out = append(out, amount)
	}
	return out, nil
}
