package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/UltimateTournament/backoff/v4"
	"github.com/loondb/loon-go/schema"
	"github.com/loondb/loon-go/utils"
	"github.com/loondb/loon-go/wire"
)

var errTableNotReady = errors.New("table not ready")

type (
	// HTTPMaster talks to the catalog master over its HTTP/JSON admin API
	HTTPMaster struct {
		Addr string
		// PollInterval is the delay between readiness checks in WaitTableReady
		PollInterval time.Duration

		httpClient *http.Client
	}
)

func NewHTTPMaster(addr string) *HTTPMaster {
	return &HTTPMaster{
		Addr:         strings.TrimSuffix(addr, "/"),
		PollInterval: time.Millisecond * 250,
		httpClient:   &http.Client{},
	}
}

func (m *HTTPMaster) DefaultTabletCount(ctx context.Context, kind schema.TableKind) (int32, error) {
	var resp wire.TabletCountResponse
	errResp, err := m.doJSON(ctx, http.MethodGet, "/api/v1/defaults/tablet-count?kind="+string(kind), nil, &resp)
	if err != nil {
		return 0, err
	}
	if errResp != nil {
		return 0, fmt.Errorf("master error %s: %s", errResp.Code, errResp.Message)
	}
	return resp.NumTablets, nil
}

func (m *HTTPMaster) CreateTable(ctx context.Context, req *wire.CreateTableRequest) (string, error) {
	var resp wire.CreateTableResponse
	errResp, err := m.doJSON(ctx, http.MethodPost, "/api/v1/tables", req, &resp)
	if err != nil {
		return "", err
	}
	if errResp != nil {
		if errResp.Code == wire.ErrCodeAlreadyPresent {
			// Surface the existing table's id so the caller can still wait on it
			return errResp.TableID, fmt.Errorf("%w: %s", ErrAlreadyPresent, errResp.Message)
		}
		return "", fmt.Errorf("master error %s: %s", errResp.Code, errResp.Message)
	}
	return resp.TableID, nil
}

func (m *HTTPMaster) WaitTableReady(ctx context.Context, tableID string) error {
	if tableID == "" {
		return fmt.Errorf("%w: missing table id", ErrInvalidArgument)
	}

	b := backoff.WithContext(backoff.NewConstantBackOff(m.PollInterval), ctx)
	return backoff.Retry(func() error {
		var resp wire.TableReadyResponse
		errResp, err := m.doJSON(ctx, http.MethodGet, "/api/v1/tables/"+tableID+"/ready", nil, &resp)
		if err != nil {
			// transport errors can be momentary, keep polling until the deadline
			return err
		}
		if errResp != nil {
			return backoff.Permanent(fmt.Errorf("master error %s: %s", errResp.Code, errResp.Message))
		}
		if !resp.Ready {
			return errTableNotReady
		}
		return nil
	}, b)
}

// doJSON runs one request against the master. A non-2xx status with a
// decodable body comes back as an ErrorResponse, transport problems as an
// error.
func (m *HTTPMaster) doJSON(ctx context.Context, method, path string, body, out any) (*wire.ErrorResponse, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("error in json.Marshal: %w", err)
		}
		reqBody = bytes.NewReader(jsonBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, m.Addr+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("error in http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", utils.GenKSortedID("req_"))

	res, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error in httpClient.Do: %w", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if res.StatusCode >= 400 {
		var errResp wire.ErrorResponse
		if err := json.Unmarshal(resBody, &errResp); err != nil {
			return nil, fmt.Errorf("master returned status %d: %s", res.StatusCode, string(resBody))
		}
		return &errResp, nil
	}

	if out != nil {
		if err := json.Unmarshal(resBody, out); err != nil {
			return nil, fmt.Errorf("error in json.Unmarshal: %w", err)
		}
	}
	return nil, nil
}
