package client

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/loondb/loon-go/gologger"
	"github.com/loondb/loon-go/utils"
)

var logger = gologger.NewLogger()

type (
	Client struct {
		Master MasterService

		// DefaultAdminOperationTimeout bounds admin operations (create table,
		// wait for ready) when the caller sets no explicit timeout
		DefaultAdminOperationTimeout time.Duration

		validate *validator.Validate
	}
)

func NewClient(master MasterService) *Client {
	return &Client{
		Master:                       master,
		DefaultAdminOperationTimeout: utils.DEFAULT_ADMIN_TIMEOUT,
		validate:                     validator.New(),
	}
}

// NewHTTPClient connects to the catalog master at masterAddr (e.g.
// "http://master-1:7100")
func NewHTTPClient(masterAddr string) *Client {
	return NewClient(NewHTTPMaster(masterAddr))
}
