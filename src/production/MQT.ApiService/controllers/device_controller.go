package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.ApiService/implementation/devices"
	"gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.ApiService/middleware"
	logger "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Logger"
	interfaces "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Repository/Interfaces"
)

const (
	storeUnavailableMessage = "Database connection failed"
	deviceNotFoundMessage   = "Device not found"
)

// DeviceController handles the LED JSON API
type DeviceController struct {
	deviceService *devices.DeviceService
	logger        *logger.Logger
}

// NewDeviceController creates a new device controller
func NewDeviceController(deviceService *devices.DeviceService, logger *logger.Logger) *DeviceController {
	return &DeviceController{
		deviceService: deviceService,
		logger:        logger,
	}
}

// RegisterRoutes registers the device routes with Gin
func (c *DeviceController) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/devices", c.ListDevices)
		api.GET("/devices/:device_id", c.GetDevice)
		api.POST("/toggle/:device_id", c.ToggleDevice)
		api.POST("/update/:device_id", c.UpdateDevice)
		api.GET("/update-all-names", c.UpdateAllNames)
	}
}

// DeviceStateResponse is returned by toggle and update
type DeviceStateResponse struct {
	Success  bool   `json:"success"`
	DeviceID string `json:"device_id"`
	State    bool   `json:"state"`
}

// UpdateDeviceRequest is the body of POST /api/update/:device_id. A missing
// state means false.
type UpdateDeviceRequest struct {
	State bool `json:"state"`
}

func (c *DeviceController) ListDevices(ctx *gin.Context) {
	result, err := c.deviceService.ListDevices(ctx)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

func (c *DeviceController) GetDevice(ctx *gin.Context) {
	device, err := c.deviceService.GetDevice(ctx, ctx.Param("device_id"))
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, device)
}

func (c *DeviceController) ToggleDevice(ctx *gin.Context) {
	deviceID := ctx.Param("device_id")

	state, err := c.deviceService.ToggleDevice(ctx, deviceID)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, DeviceStateResponse{Success: true, DeviceID: deviceID, State: state})
}

func (c *DeviceController) UpdateDevice(ctx *gin.Context) {
	deviceID := ctx.Param("device_id")

	var req UpdateDeviceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.respondError(ctx, err)
		return
	}

	state, err := c.deviceService.SetDeviceState(ctx, deviceID, req.State)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, DeviceStateResponse{Success: true, DeviceID: deviceID, State: state})
}

func (c *DeviceController) UpdateAllNames(ctx *gin.Context) {
	updated, err := c.deviceService.RepairNames(ctx)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "updated_count": updated})
}

// respondError maps service errors onto the API's status codes
func (c *DeviceController) respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, interfaces.ErrStoreUnavailable):
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": storeUnavailableMessage})
	case errors.Is(err, interfaces.ErrDeviceNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": deviceNotFoundMessage})
	default:
		c.logger.WithRequestID(middleware.GetRequestIDFromGinContext(ctx)).
			WithField("path", ctx.Request.URL.Path).
			ErrorWithError(err, "Device request failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
