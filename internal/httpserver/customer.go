package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/util"
)

type CustomerHTTP struct {
	Svc *service.CustomerService
}

func (h *CustomerHTTP) ListCustomers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.list")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.ListCustomers(ctx, repo.CustomerFilter{
		Search: c.QueryParam("search"),
		Sort:   c.QueryParam("sort"),
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return fail(l, "list_customers_failed", err)
	}

	resp := pageMeta(page, limit, total)
	resp["customers"] = items
	resp["total"] = total
	return c.JSON(http.StatusOK, resp)
}

func (h *CustomerHTTP) GetCustomer(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.get")

	id, err := parseID(c)
	if err != nil {
		l.Warn("get_customer_failed", "status", 400, "reason", "bad id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	cust, err := h.Svc.GetCustomer(ctx, id)
	if err != nil {
		return fail(l, "get_customer_failed", err)
	}
	return c.JSON(http.StatusOK, cust)
}

func (h *CustomerHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.me")

	userID, ok := middleware.UserID(c)
	if !ok {
		l.Warn("get_me_failed", "status", 401, "reason", "no identity")
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cust, err := h.Svc.Me(ctx, userID)
	if err != nil {
		return fail(l, "get_me_failed", err)
	}
	return c.JSON(http.StatusOK, cust)
}

func (h *CustomerHTTP) UpdateCustomer(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.update")

	id, err := parseID(c)
	if err != nil {
		l.Warn("update_customer_failed", "status", 400, "reason", "bad id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req transport.UpdateCustomerRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_customer_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	cust, err := h.Svc.UpdateCustomer(ctx, id, req)
	if err != nil {
		return fail(l, "update_customer_failed", err)
	}

	l.Info("update_customer_success", "customer_id", id)
	return c.JSON(http.StatusOK, cust)
}

func (h *CustomerHTTP) CustomerOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.orders")

	id, err := parseID(c)
	if err != nil {
		l.Warn("customer_orders_failed", "status", 400, "reason", "bad id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	orders, err := h.Svc.CustomerOrders(ctx, id)
	if err != nil {
		return fail(l, "customer_orders_failed", err)
	}
	return c.JSON(http.StatusOK, service.OrderViews(orders))
}

func (h *CustomerHTTP) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.stats")

	stats, err := h.Svc.Stats(ctx)
	if err != nil {
		return fail(l, "customer_stats_failed", err)
	}
	return c.JSON(http.StatusOK, stats)
}
