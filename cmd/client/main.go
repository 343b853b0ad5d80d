package main

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"github.com/go-resty/resty/v2"
)

type reply struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type contact struct {
	Id          int64  `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	IsFavorite  bool   `json:"isFavorite"`
}

// A 1x1 transparent GIF, good enough to exercise the upload path.
var photoBytes = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

// A smoke-test client that walks every endpoint of a running server: add a
// contact with a photo, list, fetch, update, toggle the favorite flag, read
// the dashboard, and delete again. Exits non-zero on the first unexpected
// response.
//
// Usage example on the command line:
// > go run main.go
// > SERVER_URL=http://localhost:5000 go run main.go
func main() {
	baseURL := os.Getenv("SERVER_URL")
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}
	client := resty.New().SetBaseURL(baseURL)

	fields := map[string]string{
		"name":         "Marcus Antonius",
		"country":      "+39",
		"phoneNumber":  "9997775550",
		"email":        "marcus@example.com",
		"dob":          "1969-11-09",
		"relationship": "Friend",
		"address":      "Via Appia 1, Roma",
	}

	var added reply
	resp, err := client.R().
		SetFormData(fields).
		SetFileReader("photo", "marcus.gif", bytes.NewReader(photoBytes)).
		SetResult(&added).
		Post("/addcontact")
	check(err, resp, "POST /addcontact")
	if !added.Success {
		fail("POST /addcontact: %s", added.Message)
	}
	fmt.Println("added contact:", added.Message)

	// A second add with the same number must be rejected.
	var dup reply
	resp, err = client.R().SetFormData(fields).SetResult(&dup).Post("/addcontact")
	check(err, resp, "POST /addcontact (duplicate)")
	if dup.Success {
		fail("duplicate phone number was accepted")
	}
	fmt.Println("duplicate rejected:", dup.Message)

	var contacts []contact
	resp, err = client.R().SetResult(&contacts).Get("/contacts")
	check(err, resp, "GET /contacts")
	id := int64(-1)
	for _, ct := range contacts {
		if ct.PhoneNumber == fields["phoneNumber"] {
			id = ct.Id
		}
	}
	if id < 0 {
		fail("added contact not present in GET /contacts")
	}
	idStr := strconv.FormatInt(id, 10)
	fmt.Println("found contact with id", id)

	var single contact
	resp, err = client.R().SetResult(&single).Get("/contacts/" + idStr)
	check(err, resp, "GET /contacts/:id")
	if single.Name != fields["name"] {
		fail("GET /contacts/%d returned name %q", id, single.Name)
	}

	fields["address"] = "Via Appia 2, Roma"
	var updated reply
	resp, err = client.R().SetFormData(fields).SetResult(&updated).Put("/contacts/" + idStr)
	check(err, resp, "PUT /contacts/:id")
	if !updated.Success {
		fail("PUT /contacts/%d: %s", id, updated.Message)
	}
	fmt.Println("updated contact:", updated.Message)

	var favored reply
	resp, err = client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]bool{"isFavorite": true}).
		SetResult(&favored).
		Put("/contacts/" + idStr + "/favorite")
	check(err, resp, "PUT /contacts/:id/favorite")
	if !favored.Success {
		fail("PUT /contacts/%d/favorite: %s", id, favored.Message)
	}
	fmt.Println("favorite set:", favored.Message)

	var stats map[string]any
	resp, err = client.R().SetResult(&stats).Get("/home")
	check(err, resp, "GET /home")
	fmt.Println("dashboard:", stats)

	var deleted reply
	resp, err = client.R().SetResult(&deleted).Delete("/contacts/" + idStr)
	check(err, resp, "DELETE /contacts/:id")
	if !deleted.Success {
		fail("DELETE /contacts/%d: %s", id, deleted.Message)
	}
	fmt.Println("deleted contact:", deleted.Message)
}

func check(err error, resp *resty.Response, call string) {
	if err != nil {
		fail("%s: %v", call, err)
	}
	if resp.IsError() {
		fail("%s: status %d: %s", call, resp.StatusCode(), resp.String())
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
