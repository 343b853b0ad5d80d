package main

import (
	"fmt"
	"net/http"
	"os"
	"time"
)

// Polls the contacts endpoint until the service answers, for scripted
// environments that need to wait for startup.
func main() {
	baseURL := os.Getenv("SERVER_URL")
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}
	totalWaitTime := 0
	for {
		res, err := http.Get(baseURL + "/contacts")
		if err == nil {
			if res.StatusCode == http.StatusOK {
				fmt.Println(res.Status)
				break
			}
			fmt.Println(res.Status)
		} else {
			fmt.Println(err)
		}
		totalWaitTime += 5
		fmt.Printf("Waiting %d seconds\n", totalWaitTime)
		time.Sleep(5 * time.Second)
	}
}
