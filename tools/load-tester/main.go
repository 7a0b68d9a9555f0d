package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// cities are search centres for the spatial filter.
var cities = []struct{ lat, lng float64 }{
	{34.0522, -118.2437},
	{40.7128, -74.0060},
	{41.8781, -87.6298},
	{47.6062, -122.3321},
}

// searchQuery builds a random combination of listing filters.
func searchQuery(r *rand.Rand) string {
	q := url.Values{}
	if r.IntN(2) == 0 {
		lo := 500 + r.IntN(10)*100
		q.Set("priceMin", fmt.Sprint(lo))
		q.Set("priceMax", fmt.Sprint(lo+1500))
	}
	if r.IntN(2) == 0 {
		q.Set("beds", fmt.Sprint(1+r.IntN(4)))
	}
	if r.IntN(3) == 0 {
		q.Set("propertyType", []string{"Apartment", "Villa", "Townhouse", "any"}[r.IntN(4)])
	}
	if r.IntN(3) == 0 {
		q.Set("amenities", "Pool")
	}
	if r.IntN(2) == 0 {
		c := cities[r.IntN(len(cities))]
		q.Set("latitude", fmt.Sprint(c.lat))
		q.Set("longitude", fmt.Sprint(c.lng))
	}
	return q.Encode()
}

func main() {
	baseURL := flag.String("url", "http://localhost:3002/properties", "Property search URL")
	token := flag.String("token", "", "Optional bearer token")
	concurrency := flag.Int("c", 10, "Number of concurrent workers")
	duration := flag.Duration("d", 30*time.Second, "Duration of the load test")
	rps := flag.Int("rps", 200, "Requests per second limit")
	flag.Parse()

	log.Printf("Starting search load test on %s", *baseURL)
	log.Printf("Concurrency: %d, Duration: %s, RPS: %d", *concurrency, *duration, *rps)

	var wg sync.WaitGroup
	var successCount, throttledCount, errorCount atomic.Int64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	limiter := rate.NewLimiter(rate.Limit(*rps), 20)

	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			client := &http.Client{Timeout: 5 * time.Second}
			r := rand.New(rand.NewPCG(uint64(workerID), uint64(time.Now().UnixNano())))

			for {
				if err := limiter.Wait(ctx); err != nil {
					return
				}

				req, err := http.NewRequestWithContext(ctx, http.MethodGet, *baseURL+"?"+searchQuery(r), nil)
				if err != nil {
					continue
				}
				if *token != "" {
					req.Header.Set("Authorization", "Bearer "+*token)
				}

				resp, err := client.Do(req)
				if err != nil {
					if ctx.Err() == nil {
						errorCount.Add(1)
					}
					continue
				}
				switch {
				case resp.StatusCode == http.StatusOK:
					successCount.Add(1)
				case resp.StatusCode == http.StatusTooManyRequests:
					throttledCount.Add(1)
				default:
					errorCount.Add(1)
				}
				resp.Body.Close()
			}
		}(i)
	}

	wg.Wait()

	totalRequests := successCount.Load() + throttledCount.Load() + errorCount.Load()
	actualRPS := float64(totalRequests) / duration.Seconds()

	log.Println("Load test finished.")
	log.Printf("Total Requests: %d", totalRequests)
	log.Printf("Successful (200 OK): %d", successCount.Load())
	log.Printf("Throttled (429): %d", throttledCount.Load())
	log.Printf("Errors: %d", errorCount.Load())
	log.Printf("Actual RPS: %.2f", actualRPS)
}
