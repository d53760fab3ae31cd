// Package fakemaster is an in-memory catalog master speaking the same
// HTTP/JSON admin API as a real master. It backs the client tests and local
// development, it is not a real catalog service: tables live in a map and
// "tablet assignment" is a poll counter.
package fakemaster

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/loondb/loon-go/gologger"
	"github.com/loondb/loon-go/schema"
	"github.com/loondb/loon-go/utils"
	"github.com/loondb/loon-go/wire"
	"golang.org/x/net/http2"
)

var logger = gologger.NewLogger()

const defaultTabletsPerTable = 8

type (
	FakeMaster struct {
		Echo *echo.Echo
		Addr string

		// ReadyAfterPolls is how many readiness checks a table sees before it
		// reports ready, 0 means immediately
		ReadyAfterPolls int
		// DefaultTabletCounts overrides the per-kind cluster default
		DefaultTabletCounts map[schema.TableKind]int32

		mu       sync.Mutex
		byName   map[string]*tableState
		byID     map[string]*tableState
		creates  int
		defaults int
	}

	tableState struct {
		ID      string
		Req     wire.CreateTableRequest
		Tablets []string
		polls   int
	}

	CustomValidator struct {
		validator *validator.Validate
	}
)

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// Start listens on a random localhost port and serves the master API until
// Shutdown
func Start() (*FakeMaster, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("error creating tcp listener: %w", err)
	}

	fm := &FakeMaster{
		Echo:   echo.New(),
		Addr:   "http://" + listener.Addr().String(),
		byName: make(map[string]*tableState),
		byID:   make(map[string]*tableState),
	}
	fm.Echo.HideBanner = true
	fm.Echo.HidePort = true
	fm.Echo.Validator = &CustomValidator{validator: validator.New()}

	fm.Echo.GET("/hc", fm.HealthCheck)
	fm.Echo.POST("/api/v1/tables", fm.CreateTableHandler)
	fm.Echo.GET("/api/v1/tables/:id/ready", fm.TableReadyHandler)
	fm.Echo.GET("/api/v1/defaults/tablet-count", fm.DefaultTabletCountHandler)

	fm.Echo.Listener = listener
	go func() {
		logger.Debug().Msg("starting fake master h2c server on " + listener.Addr().String())
		err := fm.Echo.StartH2CServer("", &http2.Server{})
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("fake master h2c server died")
		}
	}()

	return fm, nil
}

func (*FakeMaster) HealthCheck(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (fm *FakeMaster) CreateTableHandler(c echo.Context) error {
	var req wire.CreateTableRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	fm.mu.Lock()
	defer fm.mu.Unlock()
	fm.creates++

	fullName := req.Name
	if req.Namespace != "" {
		fullName = req.Namespace + "." + req.Name
	}

	if existing, ok := fm.byName[fullName]; ok {
		return c.JSON(http.StatusConflict, wire.ErrorResponse{
			Code:    wire.ErrCodeAlreadyPresent,
			Message: fmt.Sprintf("table %s already exists", fullName),
			TableID: existing.ID,
		})
	}

	id := req.TableID
	if id == "" {
		id = utils.GenTableID()
	}
	ts := &tableState{ID: id, Req: req}
	for i := int32(0); i < req.NumTablets; i++ {
		ts.Tablets = append(ts.Tablets, utils.GenRandomShortID())
	}
	fm.byName[fullName] = ts
	fm.byID[id] = ts

	logger.Debug().Msgf("fake master created table %s with id %s and %d tablets", fullName, id, len(ts.Tablets))
	return c.JSON(http.StatusOK, wire.CreateTableResponse{TableID: id})
}

func (fm *FakeMaster) TableReadyHandler(c echo.Context) error {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	ts, ok := fm.byID[c.Param("id")]
	if !ok {
		return c.JSON(http.StatusNotFound, wire.ErrorResponse{
			Code:    "NOT_FOUND",
			Message: fmt.Sprintf("table %s not found", c.Param("id")),
		})
	}

	ts.polls++
	return c.JSON(http.StatusOK, wire.TableReadyResponse{Ready: ts.polls > fm.ReadyAfterPolls})
}

func (fm *FakeMaster) DefaultTabletCountHandler(c echo.Context) error {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	fm.defaults++

	kind := schema.TableKind(c.QueryParam("kind"))
	count := int32(defaultTabletsPerTable)
	if override, ok := fm.DefaultTabletCounts[kind]; ok {
		count = override
	}
	return c.JSON(http.StatusOK, wire.TabletCountResponse{NumTablets: count})
}

// Table returns the stored create request for a full name, for assertions
func (fm *FakeMaster) Table(fullName string) (wire.CreateTableRequest, bool) {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	ts, ok := fm.byName[fullName]
	if !ok {
		return wire.CreateTableRequest{}, false
	}
	return ts.Req, true
}

// Counts reports how many create and default-tablet-count calls were served
func (fm *FakeMaster) Counts() (creates, defaults int) {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	return fm.creates, fm.defaults
}

func (fm *FakeMaster) Shutdown(ctx context.Context) error {
	return fm.Echo.Shutdown(ctx)
}
