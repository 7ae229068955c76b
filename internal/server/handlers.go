package server

import (
	"net/http"
	"strconv"
	"strings"

	"attendance-station/internal/apperr"
	"attendance-station/internal/identify"
	"attendance-station/internal/models"
	"attendance-station/internal/settings"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type createEmployeeRequest struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email"`
	FingerprintID string `json:"fingerprint_id"`
}

type identifyRequest struct {
	Mode  string `json:"mode"`
	Input string `json:"input"`
}

type confirmRequest struct {
	EmployeeID uint `json:"employee_id" binding:"required"`
}

type attendanceRow struct {
	Date          string  `json:"date"`
	Name          string  `json:"name"`
	ArrivalTime   *string `json:"arrival_time"`
	DepartureTime *string `json:"departure_time"`
}

func (a *App) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (a *App) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	token, err := a.Auth.Login(req.Username, req.Password)
	if err != nil {
		a.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (a *App) handleListEmployees(c *gin.Context) {
	employees, err := a.Employees.GetAll()
	if err != nil {
		a.writeError(c, apperr.Storage("failed to list employees", err))
		return
	}
	c.JSON(http.StatusOK, employees)
}

func (a *App) handleCreateEmployee(c *gin.Context) {
	var req createEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	employee := &models.Employee{
		Name:          req.Name,
		Email:         req.Email,
		FingerprintID: req.FingerprintID,
	}
	if err := a.Employees.Create(employee); err != nil {
		a.writeError(c, apperr.Storage("failed to create employee", err))
		return
	}

	c.JSON(http.StatusCreated, employee)
}

func (a *App) handleEnrollFace(c *gin.Context) {
	id, ok := a.employeeIDParam(c)
	if !ok {
		return
	}

	employee, err := a.Coordinator().EnrollFace(id)
	if err != nil {
		a.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, employee)
}

func (a *App) handleEnrollFingerprint(c *gin.Context) {
	id, ok := a.employeeIDParam(c)
	if !ok {
		return
	}

	employee, err := a.Coordinator().EnrollFingerprint(id)
	if err != nil {
		a.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, employee)
}

func (a *App) handleIdentify(c *gin.Context) {
	var req identifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	coordinator := a.Coordinator()

	// An omitted mode means the configured station mode, not fingerprint.
	mode := coordinator.Mode()
	if strings.TrimSpace(req.Mode) != "" {
		mode = settings.ParseMode(req.Mode)
	}

	var result *identify.MarkResult
	var err error

	switch mode {
	case settings.ModeFace:
		// Client disconnect cancels the live loop and releases the camera.
		result, err = coordinator.IdentifyFace(c.Request.Context())
	case settings.ModeManual:
		result, err = coordinator.IdentifyManual(req.Input)
	default:
		result, err = coordinator.IdentifyFingerprint()
	}

	if err != nil {
		a.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (a *App) handleConfirm(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "employee_id is required"})
		return
	}

	result, err := a.Coordinator().Confirm(req.EmployeeID)
	if err != nil {
		a.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (a *App) handleListAttendance(c *gin.Context) {
	records, err := a.Ledger.AllRecords()
	if err != nil {
		a.writeError(c, err)
		return
	}

	rows := make([]attendanceRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, attendanceRow{
			Date:          r.Date,
			Name:          r.Employee.Name,
			ArrivalTime:   r.ArrivalTime,
			DepartureTime: r.DepartureTime,
		})
	}

	c.JSON(http.StatusOK, rows)
}

func (a *App) handleTodaysRecord(c *gin.Context) {
	idStr := c.Query("employee_id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "employee_id is required"})
		return
	}

	record, err := a.Ledger.TodaysRecord(uint(id))
	if err != nil {
		a.writeError(c, err)
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no record today", "code": string(apperr.CodeNotFound)})
		return
	}

	c.JSON(http.StatusOK, record)
}

func (a *App) handleTodaysCount(c *gin.Context) {
	count, err := a.Ledger.TodaysCount()
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (a *App) handleGetSettings(c *gin.Context) {
	values, err := a.Settings.All()
	if err != nil {
		a.writeError(c, apperr.Storage("failed to read settings", err))
		return
	}
	c.JSON(http.StatusOK, values)
}

func (a *App) handlePutSettings(c *gin.Context) {
	var values map[string]string
	if err := c.ShouldBindJSON(&values); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	for key, value := range values {
		if err := a.Settings.Set(key, value); err != nil {
			a.writeError(c, apperr.Storage("failed to save setting", err))
			return
		}
	}

	a.Reload()
	c.JSON(http.StatusOK, gin.H{"updated": len(values)})
}

func (a *App) employeeIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employee id"})
		return 0, false
	}
	return uint(id), true
}

func (a *App) writeError(c *gin.Context, err error) {
	code := apperr.CodeOf(err)
	body := gin.H{"error": err.Error()}
	if code != "" {
		body["code"] = string(code)
	}
	c.JSON(statusForError(err), body)
}
