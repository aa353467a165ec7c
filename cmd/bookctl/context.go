package main

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/emzola/bookform/clients"
	"github.com/emzola/bookform/config"
	"github.com/emzola/bookform/internal/jsonlog"
	"github.com/emzola/bookform/repository"
	"github.com/emzola/bookform/service"
)

type rootFlags struct {
	config   string
	api      string
	json     bool
	logLevel string
}

type commandContext struct {
	flags *rootFlags

	// interactive reports whether in is a terminal a person can answer on.
	interactive func(in io.Reader) bool

	configOnce sync.Once
	config     config.Config
	configErr  error
}

func newCommandContext(flags *rootFlags) *commandContext {
	return &commandContext{
		flags:       flags,
		interactive: isTerminal,
	}
}

// ensureConfig loads the configuration once: defaults, the YAML file, the
// environment, then the --api and --log-level flags.
func (c *commandContext) ensureConfig() (config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Decode(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if api := strings.TrimSpace(c.flags.api); api != "" {
			cfg.API.BaseURL = api
		}
		if level := strings.TrimSpace(c.flags.logLevel); level != "" {
			cfg.Log.Level = level
		}
		if err := config.Validate(cfg); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// service builds the controller for one command. Logs go to the command's
// stderr.
func (c *commandContext) service(cmd *cobra.Command) (service.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	level, err := jsonlog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.APITimeout()
	if err != nil {
		return nil, err
	}
	logger := jsonlog.New(cmd.ErrOrStderr(), level)
	repo, err := repository.New(clients.NewHTTPClient(timeout), cfg.API.BaseURL, logger)
	if err != nil {
		return nil, err
	}
	return service.New(logger, repo), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func isTerminal(in io.Reader) bool {
	file, ok := in.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
