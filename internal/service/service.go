// Package service is the HTTP-facing side of the contact manager. It parses
// and validates requests, stores uploaded photos, invokes the store, and
// translates store outcomes into the JSON shapes the frontend consumes.
package service

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"gitlab.com/ayan.chowdhury/contact-manager/internal/model"
	"gitlab.com/ayan.chowdhury/contact-manager/internal/store"
)

// api bundles the dependencies shared by all HTTP handlers.
type api struct {
	store     *store.Store
	uploadDir string
	log       *zap.SugaredLogger
}

// SetupHttpRouter initializes the REST API router and registers all
// endpoints. Uploaded photos are served as static content under /uploads.
func SetupHttpRouter(st *store.Store, uploadDir string, log *zap.SugaredLogger) *gin.Engine {
	var router *gin.Engine
	if strings.EqualFold(os.Getenv("GIN_LOGGING"), "off") {
		router = gin.New()
		router.Use(gin.Recovery())
	} else {
		router = gin.Default()
	}
	a := &api{store: st, uploadDir: uploadDir, log: log}
	router.Use(corsMiddleware())
	router.GET("/contacts", a.findContacts)
	router.GET("/contacts/:id", a.findContactByID)
	router.POST("/addcontact", a.addContact)
	router.PUT("/contacts/:id", a.updateContactByID)
	router.DELETE("/contacts/:id", a.deleteContactByID)
	router.PUT("/contacts/:id/favorite", a.setFavoriteByID)
	router.GET("/home", a.dashboardStats)
	router.Static("/uploads", uploadDir)
	return router
}

// corsMiddleware allows the browser frontend to call the API from any
// origin. Preflight requests are answered directly.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// findContacts responds with the list of all contacts as JSON.
//
// Example REST API call:
//
//	> curl "http://localhost:5000/contacts"
func (a *api) findContacts(c *gin.Context) {
	contacts, err := a.store.List(c.Request.Context())
	if err != nil {
		a.log.Errorw("could not list contacts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, contacts)
}

// findContactByID locates the contact whose ID value matches the id parameter
// of the request URL, then returns that contact as a response.
//
// Example REST API call:
//
//	> curl "http://localhost:5000/contacts/56"
func (a *api) findContactByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Contact not found"})
		return
	}
	contact, err := a.store.GetByID(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Contact not found"})
		return
	}
	if err != nil {
		a.log.Errorw("could not fetch contact", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, contact)
}

// addContact creates a new contact from a multipart form. An optional 'photo'
// file part is stored in the uploads directory and referenced by the new row.
// A duplicate phone number is reported with success=false rather than an HTTP
// error status, which is what the frontend expects.
//
// Example REST API call:
//
//	> curl http://localhost:5000/addcontact -F "name=Erika Mustermann" -F "country=+49" -F "phoneNumber=08154711" -F "photo=@erika.jpg"
func (a *api) addContact(c *gin.Context) {
	params, ok := a.parseContactForm(c)
	if !ok {
		return
	}
	photoURL, ok := a.storePhoto(c)
	if !ok {
		return
	}
	params.PhotoURL = photoURL

	_, err := a.store.Create(c.Request.Context(), params)
	switch {
	case errors.Is(err, store.ErrConflict):
		a.discardPhoto(photoURL)
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Phone number already exists"})
	case err != nil:
		a.discardPhoto(photoURL)
		a.log.Errorw("could not add contact", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Contact added successfully"})
	}
}

// updateContactByID overwrites the contact whose ID value matches the id
// parameter of the request URL with the fields of a multipart form. Without a
// new 'photo' file part the stored photo reference is kept; with one, the old
// photo file is replaced.
//
// Example REST API call:
//
//	> curl http://localhost:5000/contacts/56 --request "PUT" -F "name=Erika Mustermann" -F "country=+49" -F "phoneNumber=08154711"
func (a *api) updateContactByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Failed to update contact"})
		return
	}
	params, ok := a.parseContactForm(c)
	if !ok {
		return
	}
	photoURL, ok := a.storePhoto(c)
	if !ok {
		return
	}
	params.PhotoURL = photoURL

	err := a.store.Update(c.Request.Context(), id, params)
	switch {
	case errors.Is(err, store.ErrConflict):
		a.discardPhoto(photoURL)
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Phone number already exists"})
	case errors.Is(err, store.ErrNotFound):
		a.discardPhoto(photoURL)
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Failed to update contact"})
	case err != nil:
		a.discardPhoto(photoURL)
		a.log.Errorw("could not update contact", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Contact updated successfully"})
	}
}

// deleteContactByID deletes the contact whose ID value matches the id
// parameter of the request URL, along with its stored photo file if any.
//
// Example REST API call:
//
//	> curl http://localhost:5000/contacts/56 --request "DELETE"
func (a *api) deleteContactByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Failed to delete contact"})
		return
	}
	err := a.store.Delete(c.Request.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Failed to delete contact"})
	case err != nil:
		a.log.Errorw("could not delete contact", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Contact deleted successfully"})
	}
}

// setFavoriteByID sets only the isFavorite flag of the contact whose ID value
// matches the id parameter of the request URL.
//
// Example REST API call:
//
//	> curl http://localhost:5000/contacts/56/favorite --request "PUT" --header "Content-Type: application/json" --data '{"isFavorite": true}'
func (a *api) setFavoriteByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Contact not found"})
		return
	}
	var body struct {
		IsFavorite *bool `json:"isFavorite" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "isFavorite is required"})
		return
	}
	err := a.store.SetFavorite(c.Request.Context(), id, *body.IsFavorite)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Contact not found"})
	case err != nil:
		a.log.Errorw("could not update favorite status", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Favorite status updated successfully"})
	}
}

// dashboardStats responds with the aggregate numbers for the home view.
//
// Example REST API call:
//
//	> curl "http://localhost:5000/home"
func (a *api) dashboardStats(c *gin.Context) {
	stats, err := a.store.DashboardStats(c.Request.Context(), time.Now())
	if err != nil {
		a.log.Errorw("could not compute dashboard stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// parseID reads the id URL parameter. A non-numeric id never reaches the
// database.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// parseContactForm extracts the contact fields from a multipart form. Name,
// country and phone number must be present; the remaining fields map to NULL
// when blank. On a validation failure the request is already answered.
func (a *api) parseContactForm(c *gin.Context) (model.ContactParams, bool) {
	params := model.ContactParams{
		Name:         strings.TrimSpace(c.PostForm("name")),
		Country:      strings.TrimSpace(c.PostForm("country")),
		PhoneNumber:  strings.TrimSpace(c.PostForm("phoneNumber")),
		Email:        optional(c.PostForm("email")),
		Relationship: optional(c.PostForm("relationship")),
		Address:      optional(c.PostForm("address")),
	}
	if params.Name == "" || params.Country == "" || params.PhoneNumber == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest,
			gin.H{"success": false, "message": "name, country and phoneNumber are required"})
		return model.ContactParams{}, false
	}
	if dob := c.PostForm("dob"); dob != "" {
		parsed, err := time.Parse("2006-01-02", dob)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				gin.H{"success": false, "message": "dob must be formatted as YYYY-MM-DD"})
			return model.ContactParams{}, false
		}
		params.Dob = &parsed
	}
	return params, true
}

// storePhoto saves the optional 'photo' file part under a collision-free name
// and returns its relative URL. A request without a photo yields (nil, true).
// On failure the request is already answered.
func (a *api) storePhoto(c *gin.Context) (*string, bool) {
	file, err := c.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, true
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest,
			gin.H{"success": false, "message": "invalid photo upload"})
		return nil, false
	}
	name := fmt.Sprintf("%d-%s%s",
		time.Now().UnixMilli(), uuid.NewString()[:8], filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, filepath.Join(a.uploadDir, name)); err != nil {
		a.log.Errorw("could not store uploaded photo", "file", name, "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			gin.H{"success": false, "message": "Server error"})
		return nil, false
	}
	url := "/uploads/" + name
	return &url, true
}

// discardPhoto removes a photo file that was stored for a request whose write
// did not go through, so failed requests do not leave orphans behind.
func (a *api) discardPhoto(url *string) {
	if url == nil {
		return
	}
	file := filepath.Join(a.uploadDir, path.Base(*url))
	if err := os.Remove(file); err != nil {
		a.log.Warnw("could not remove stored photo after failed request", "file", file, "error", err)
	}
}

// optional maps a blank form value to NULL.
func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
