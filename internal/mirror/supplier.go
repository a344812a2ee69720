package mirror

import (
	"context"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

// ProbePath is requested on every mirror to decide whether it is serving the catalog
const ProbePath = "/categories"

// Supplier hands out catalog base URLs in round-robin order
type Supplier interface {
	Get() string
	Len() int
}

type supplier struct {
	baseURLs []string
	current  int
	mutex    sync.Mutex
}

// NewSupplier returns a supplier that always starts with primary, followed by the
// mirrors that answered the probe. Unreachable mirrors are skipped.
func NewSupplier(ctx context.Context, primary string, mirrors []string) Supplier {
	baseURLs := []string{strings.TrimRight(primary, "/")}
	if len(mirrors) == 0 {
		return &supplier{baseURLs: baseURLs}
	}

	log.Infof("🔄 Probing %d catalog mirrors in parallel...", len(mirrors))

	healthy := make([]bool, len(mirrors))
	semaphore := make(chan struct{}, 8)

	var wg sync.WaitGroup
	for i, mirrorURL := range mirrors {
		wg.Add(1)

		go func(index int, baseURL string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if isMirrorHealthy(ctx, baseURL) {
				healthy[index] = true
				log.Infof("✅ Mirror %s is serving the catalog", baseURL)
			} else {
				log.Infof("❌ Mirror %s is not reachable, skipping", baseURL)
			}
		}(i, strings.TrimRight(mirrorURL, "/"))
	}

	wg.Wait()

	// Keep configuration order so failover is predictable
	for i, ok := range healthy {
		if ok {
			baseURLs = append(baseURLs, strings.TrimRight(mirrors[i], "/"))
		}
	}

	log.Infof("✅ Mirror supplier initialized with %d of %d mirrors", len(baseURLs)-1, len(mirrors))

	return &supplier{baseURLs: baseURLs}
}

// Get returns the next base URL in round-robin fashion
func (s *supplier) Get() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	baseURL := s.baseURLs[s.current]
	s.current = (s.current + 1) % len(s.baseURLs)

	return baseURL
}

func (s *supplier) Len() int {
	return len(s.baseURLs)
}

func isMirrorHealthy(ctx context.Context, baseURL string) bool {
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetRetryCount(0)
	defer client.Close()

	resp, err := client.R().
		SetContext(ctx).
		Get(baseURL + ProbePath)

	if err != nil {
		log.Debugf("Mirror probe failed for %s: %v", baseURL, err)
		return false
	}

	if resp.IsError() {
		log.Debugf("Mirror probe failed for %s with status: %s", baseURL, resp.Status())
		return false
	}

	return true
}
