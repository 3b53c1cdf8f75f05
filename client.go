package mlfairy

import "fmt"

// Client creates model acquisition tasks. All methods are safe for
// concurrent use; each Download call returns an independent task.
type Client struct {
	// cfg holds the module configuration.
	cfg Config

	// network handles all server communication.
	network Network

	// storage handles local filesystem operations.
	storage Storage

	// compiler turns verified artifacts into loadable models.
	compiler Compiler

	// logger receives diagnostic messages. May be nil.
	logger Logger

	// device is collected once and sent with every metadata request.
	device DeviceInfo
}

// NewClient creates a Client with the given configuration.
// Returns an error if the configuration is invalid (empty AppName or
// BaseURL).
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	if cfg.AppName == "" {
		return nil, fmt.Errorf("%w: AppName is required", ErrInvalidConfig)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: BaseURL is required", ErrInvalidConfig)
	}

	ccfg := newClientConfig()
	for _, opt := range opts {
		opt(ccfg)
	}

	storage := ccfg.storage
	if storage == nil {
		ds, err := newDiskStorage(cfg)
		if err != nil {
			return nil, err
		}
		storage = ds
	}

	network := ccfg.network
	if network == nil {
		network = newHTTPNetwork(cfg.BaseURL, ccfg.httpClient, ccfg.logger)
	}

	compiler := ccfg.compiler
	if compiler == nil {
		compiler = copyCompiler{}
	}

	return &Client{
		cfg:      cfg,
		network:  network,
		storage:  storage,
		compiler: compiler,
		logger:   ccfg.logger,
		device:   collectDeviceInfo(),
	}, nil
}

// Download constructs an unstarted acquisition task for a token. The caller
// starts it with Start and observes the result via Subscribe:
//
//	client.Download(token).
//		Tag("user-42").
//		Start().
//		Subscribe(mlfairy.GoExecutor, func(model mlfairy.Model, err error) { ... })
//
// One task instance handles one token; call Download again for a fresh
// acquisition attempt.
func (c *Client) Download(token string) *DownloadTask {
	return newDownloadTask(token, c.device, c.network, c.storage, c.compiler, c.logger)
}
