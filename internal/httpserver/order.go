package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/util"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.place")

	var req transport.PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("place_order_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, service.MsgInvalidItems)
	}

	userID, _ := middleware.UserID(c)
	id, err := h.Svc.PlaceOrder(ctx, userID, req)
	if err != nil {
		return fail(l, "place_order_failed", err)
	}

	l.Info("place_order_success", "order_id", id)
	return c.JSON(http.StatusOK, transport.PlaceOrderResponse{Message: service.MsgOrderPlaced, OrderID: id})
}

func (h *OrderHTTP) MyOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.my_orders")

	userID, ok := middleware.UserID(c)
	if !ok {
		l.Warn("my_orders_failed", "status", 401, "reason", "no identity")
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	items, err := h.Svc.MyOrders(ctx, userID)
	if err != nil {
		return fail(l, "my_orders_failed", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	f := repo.OrderFilter{
		Search: c.QueryParam("search"),
		Status: models.OrderStatus(strings.TrimSpace(c.QueryParam("status"))),
		Sort:   c.QueryParam("sort"),
		Offset: offset,
		Limit:  limit,
	}

	from, _, err := parseDay(c.QueryParam("startDate"))
	if err != nil {
		l.Warn("list_orders_failed", "status", 400, "reason", "bad startDate", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid startDate")
	}
	if !from.IsZero() {
		f.From = &from
	}
	to, dayOnly, err := parseDay(c.QueryParam("endDate"))
	if err != nil {
		l.Warn("list_orders_failed", "status", 400, "reason", "bad endDate", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid endDate")
	}
	if !to.IsZero() {
		// a bare date includes the whole day
		if dayOnly {
			to = to.Add(24 * time.Hour)
		}
		f.To = &to
	}

	total, items, err := h.Svc.ListOrders(ctx, f)
	if err != nil {
		return fail(l, "list_orders_failed", err)
	}

	resp := pageMeta(page, limit, total)
	resp["orders"] = items
	resp["total"] = total
	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	id, err := parseID(c)
	if err != nil {
		l.Warn("get_order_failed", "status", 400, "reason", "bad id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	o, err := h.Svc.GetOrder(ctx, id)
	if err != nil {
		return fail(l, "get_order_failed", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := parseID(c)
	if err != nil {
		l.Warn("update_status_failed", "status", 400, "reason", "bad id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req transport.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_status_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	o, err := h.Svc.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return fail(l, "update_status_failed", err)
	}

	l.Info("update_status_success", "order_id", id, "order_status", o.Status)
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Cập nhật trạng thái đơn hàng thành công",
		"order":   o,
	})
}

func (h *OrderHTTP) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.stats")

	stats, err := h.Svc.Stats(ctx)
	if err != nil {
		return fail(l, "order_stats_failed", err)
	}
	return c.JSON(http.StatusOK, stats)
}
