package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Book represents the structure of a document to insert
type Book struct {
	ID     string `json:"_id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   int    `json:"year"`
	Genre  string `json:"genre"`
}

var (
	words   = []string{"night", "river", "empire", "glass", "winter", "machine", "garden", "storm", "silent", "golden"}
	authors = []string{"Le Guin", "Herbert", "Gibson", "Butler", "Okorafor", "Jemisin", "Chiang", "Banks"}
	genres  = []string{"science fiction", "fantasy", "mystery", "poetry", "history"}
)

// generateTitle generates a random title of two to four words
func generateTitle(rng *rand.Rand) string {
	n := rng.Intn(3) + 2
	parts := make([]string, n)
	for i := range parts {
		w := words[rng.Intn(len(words))]
		parts[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(parts, " ")
}

func generateBook(rng *rand.Rand, i int) Book {
	return Book{
		ID:     fmt.Sprintf("book-%06d", i),
		Title:  generateTitle(rng),
		Author: authors[rng.Intn(len(authors))],
		Year:   rng.Intn(75) + 1950,
		Genre:  genres[rng.Intn(len(genres))],
	}
}

func post(target string, body interface{}, want ...int) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}
	resp, err := http.Post(target, "application/json", bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	for _, status := range want {
		if resp.StatusCode == status {
			return nil
		}
	}
	var errBody struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&errBody)
	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, errBody.Error)
}

// insertBatch sends one bulk insert request
func insertBatch(baseURL, appID, index string, books []Book) error {
	return post(fmt.Sprintf("%s/api/document/%s/%s", baseURL, url.PathEscape(appID), url.PathEscape(index)), books, http.StatusCreated)
}

// searchOnce runs a search for term and returns the reported hit count
func searchOnce(baseURL, appID, index, term string) (int, error) {
	q := url.Values{"search_term": {term}, "search_in": {"title,author"}, "count": {"5"}}
	resp, err := http.Get(fmt.Sprintf("%s/api/search/%s/%s?%s", baseURL, url.PathEscape(appID), url.PathEscape(index), q.Encode()))
	if err != nil {
		return 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var body struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	return body.Hits.Total.Value, nil
}

func main() {
	var (
		numBooks  = flag.Int("n", 1000, "Number of documents to insert")
		batchSize = flag.Int("batch", 100, "Documents per bulk request")
		serverURL = flag.String("url", "http://localhost:8080", "Server URL")
		appID     = flag.String("app", "loadtest", "Application id (must already be registered)")
		index     = flag.String("index", "books", "Index to create and fill")
		searches  = flag.Int("searches", 50, "Number of searches to run after inserting")
		seed      = flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	)
	flag.Parse()

	if *numBooks <= 0 || *batchSize <= 0 {
		fmt.Println("Error: -n and -batch must be greater than 0")
		os.Exit(1)
	}
	rng := rand.New(rand.NewSource(*seed))

	fmt.Printf("Starting load test: inserting %d books into %s/%s on %s\n", *numBooks, *appID, *index, *serverURL)
	fmt.Println("Press Ctrl+C to stop early")

	err := post(fmt.Sprintf("%s/api/index/%s", *serverURL, url.PathEscape(*appID)),
		map[string]interface{}{"index": *index}, http.StatusCreated, http.StatusConflict)
	if err != nil {
		fmt.Printf("Error creating index: %v\n", err)
		os.Exit(1)
	}

	// Track timing and statistics
	startTime := time.Now()
	successCount := 0
	errorCount := 0
	batches := (*numBooks + *batchSize - 1) / *batchSize
	reportInterval := max(1, batches/10)

	for b := 0; b < batches; b++ {
		from := b * *batchSize
		to := min(from+*batchSize, *numBooks)
		books := make([]Book, 0, to-from)
		for i := from; i < to; i++ {
			books = append(books, generateBook(rng, i))
		}

		if err := insertBatch(*serverURL, *appID, *index, books); err != nil {
			errorCount += len(books)
			fmt.Printf("Error inserting batch %d: %v\n", b+1, err)
		} else {
			successCount += len(books)
		}

		if (b+1)%reportInterval == 0 || b == batches-1 {
			elapsed := time.Since(startTime)
			rate := float64(to) / elapsed.Seconds()
			fmt.Printf("Progress: %d/%d books (%.1f%%) - Rate: %.1f docs/sec - Success: %d, Errors: %d\n",
				to, *numBooks, float64(to)/float64(*numBooks)*100, rate, successCount, errorCount)
		}
	}
	insertTime := time.Since(startTime)

	searchStart := time.Now()
	searchErrors := 0
	for i := 0; i < *searches; i++ {
		if _, err := searchOnce(*serverURL, *appID, *index, words[rng.Intn(len(words))]); err != nil {
			searchErrors++
			fmt.Printf("Error in search %d: %v\n", i+1, err)
		}
	}
	searchTime := time.Since(searchStart)

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("LOAD TEST COMPLETE")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Total books attempted: %d\n", *numBooks)
	fmt.Printf("Successful inserts:    %d\n", successCount)
	fmt.Printf("Failed inserts:        %d\n", errorCount)
	fmt.Printf("Insert time:           %v\n", insertTime)
	fmt.Printf("Average insert rate:   %.2f docs/sec\n", float64(*numBooks)/insertTime.Seconds())
	if *searches > 0 {
		fmt.Printf("Searches run:          %d (%d failed)\n", *searches, searchErrors)
		fmt.Printf("Average search time:   %v\n", searchTime/time.Duration(*searches))
	}

	if errorCount > 0 || searchErrors > 0 {
		fmt.Printf("\nWarning: %d insert and %d search errors occurred during the load test\n", errorCount, searchErrors)
		os.Exit(1)
	}

	fmt.Println("\nLoad test completed successfully!")
}
