package framework

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ServiceInfo is the metadata returned by the root resource of the API under test.
type ServiceInfo struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

// TestHarness holds what every test needs to know about the API under test.
type TestHarness struct {
	serviceBaseURL string
	serviceInfo    ServiceInfo
	logger         Logger
}

// NewTestHarness creates a TestHarness, and verifies that the API under test is responding by
// querying its root resource until it answers or the timeout expires.
func NewTestHarness(
	serviceBaseURL string,
	statusQueryTimeout time.Duration,
	debugLogger Logger,
	startupOutput io.Writer,
) (*TestHarness, error) {
	if debugLogger == nil {
		debugLogger = NullLogger()
	}
	if startupOutput == nil {
		startupOutput = io.Discard
	}
	baseURL := strings.TrimSuffix(serviceBaseURL, "/")

	info, err := queryServiceInfo(baseURL, statusQueryTimeout, startupOutput)
	if err != nil {
		return nil, err
	}
	debugLogger.Printf("API under test reports %q version %q", info.Message, info.Version)

	return &TestHarness{
		serviceBaseURL: baseURL,
		serviceInfo:    info,
		logger:         debugLogger,
	}, nil
}

// BaseURL returns the base URL of the API under test, without a trailing slash.
func (h *TestHarness) BaseURL() string {
	return h.serviceBaseURL
}

func (h *TestHarness) ServiceInfo() ServiceInfo {
	return h.serviceInfo
}

func (h *TestHarness) Logger() Logger {
	return h.logger
}

func queryServiceInfo(baseURL string, timeout time.Duration, output io.Writer) (ServiceInfo, error) {
	fmt.Fprintf(output, "Connecting to API under test at %s", baseURL)

	client := &http.Client{Timeout: timeout}
	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprintf(output, ".")
		resp, err := client.Get(baseURL + "/")
		if err == nil {
			fmt.Fprintln(output)
			respData, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if resp.StatusCode != 200 {
				return ServiceInfo{}, errors.Errorf("API under test returned status code %d", resp.StatusCode)
			}
			if readErr != nil {
				return ServiceInfo{}, readErr
			}
			fmt.Fprintf(output, "Status query returned metadata: %s\n", string(respData))
			var info ServiceInfo
			if err := json.Unmarshal(respData, &info); err != nil {
				return ServiceInfo{}, errors.Errorf("malformed root response from API under test: %s", string(respData))
			}
			return info, nil
		}
		if !time.Now().Before(deadline) {
			fmt.Fprintln(output)
			return ServiceInfo{}, errors.Wrap(err, "timed out, result of last query was")
		}
		time.Sleep(time.Millisecond * 100)
	}
}
