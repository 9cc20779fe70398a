package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/galactic-filament/apiserver-contract-tests/config"
	"github.com/galactic-filament/apiserver-contract-tests/framework"
	"github.com/galactic-filament/apiserver-contract-tests/framework/ldtest"
)

const (
	urlEnvVar           = "APISERVER_URL"
	timeoutEnvVar       = "APISERVER_TIMEOUT"
	defaultReadyTimeout = time.Second * 10
)

type commandParams struct {
	serviceURL   string
	configPath   string
	filters      ldtest.RegexFilters
	timeout      time.Duration
	readyTimeout time.Duration
	parallel     int
	xlsxPath     string
	selfTest     bool
	noColor      bool
	debug        bool
	debugAll     bool
	// explicit holds the names of the flags given on the command line.
	explicit map[string]bool
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Read parses the command line. Values come from, in increasing order of precedence: built-in
// defaults, environment variables, the -config file, and explicit flags.
func (c *commandParams) Read(args []string, errOut io.Writer) bool {
	defaultTimeout := ldtest.DefaultTestTimeout
	if s := os.Getenv(timeoutEnvVar); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			fmt.Fprintf(errOut, "Invalid %s: %s\n", timeoutEnvVar, err)
			return false
		}
		defaultTimeout = d
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&c.serviceURL, "url", getEnv(urlEnvVar, ""), "base URL of the API server (default $"+urlEnvVar+")")
	fs.StringVar(&c.configPath, "config", "", "JSON file with default parameters")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.DurationVar(&c.timeout, "timeout", defaultTimeout, "time limit for each request (default $"+timeoutEnvVar+")")
	fs.DurationVar(&c.readyTimeout, "ready-timeout", defaultReadyTimeout, "how long to wait for the API server to start responding")
	fs.IntVar(&c.parallel, "parallel", 1, "number of test groups to run at once")
	fs.StringVar(&c.xlsxPath, "xlsx", "", "write an xlsx report of the results to this file")
	fs.BoolVar(&c.selfTest, "self-test", false, "run against a built-in stand-in server instead of -url")
	fs.BoolVar(&c.noColor, "no-color", false, "disable colored output")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		return false
	}
	c.explicit = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { c.explicit[fl.Name] = true })
	if c.configPath != "" {
		if err := c.applyConfigFile(); err != nil {
			fmt.Fprintln(errOut, err)
			return false
		}
	}
	if c.serviceURL == "" && !c.selfTest {
		fmt.Fprintf(errOut, "-url is required unless %s is set or -self-test is used\n", urlEnvVar)
		fs.Usage()
		return false
	}
	if c.timeout <= 0 {
		fmt.Fprintln(errOut, "-timeout must be greater than zero")
		return false
	}
	return true
}

func (c *commandParams) applyConfigFile() error {
	f, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	explicit := c.explicit

	if !explicit["url"] && f.URL != "" {
		c.serviceURL = f.URL
	}
	if !explicit["timeout"] {
		c.timeout = config.Millis(f.TimeoutMS, c.timeout)
	}
	if !explicit["ready-timeout"] {
		c.readyTimeout = config.Millis(f.ReadyTimeoutMS, c.readyTimeout)
	}
	if !explicit["parallel"] {
		c.parallel = f.Parallel.OrElse(c.parallel)
	}
	if !explicit["run"] {
		for _, p := range f.Run {
			if err := c.filters.MustMatch.Set(p); err != nil {
				return fmt.Errorf("run pattern in %s: %w", c.configPath, err)
			}
		}
	}
	if !explicit["skip"] {
		for _, p := range f.Skip {
			if err := c.filters.MustNotMatch.Set(p); err != nil {
				return fmt.Errorf("skip pattern in %s: %w", c.configPath, err)
			}
		}
	}
	if !explicit["xlsx"] && f.XLSXReport != "" {
		c.xlsxPath = f.XLSXReport
	}
	if !explicit["debug"] && f.Debug {
		c.debug = true
	}
	return nil
}

// rerunCommand returns a command line that runs only the specified tests again, with the same
// config file and the same explicitly set timing parameters.
func (c *commandParams) rerunCommand(program string, failures []ldtest.TestResult) string {
	var b framework.CommandBuilder
	b.Add(program)
	if c.selfTest {
		b.Add("-self-test")
	} else {
		b.Add("-url", c.serviceURL)
	}
	if c.configPath != "" {
		b.Add("-config", c.configPath)
	}
	if c.explicit["timeout"] {
		b.Add("-timeout", c.timeout.String())
	}
	if c.explicit["ready-timeout"] {
		b.Add("-ready-timeout", c.readyTimeout.String())
	}
	if c.explicit["parallel"] {
		b.Add("-parallel", strconv.Itoa(c.parallel))
	}
	for _, f := range failures {
		b.Add("-run", ldtest.ExactMatch(f.TestID))
	}
	b.Add("-debug")
	return b.String()
}
