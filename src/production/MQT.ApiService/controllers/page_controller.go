package controllers

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.ApiService/implementation/devices"
	logger "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Logger"
	hardware_models "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Models/hardware"
	interfaces "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Repository/Interfaces"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageController renders the browser control panel
type PageController struct {
	deviceService *devices.DeviceService
	logger        *logger.Logger
}

// NewPageController creates a new page controller
func NewPageController(deviceService *devices.DeviceService, logger *logger.Logger) *PageController {
	return &PageController{
		deviceService: deviceService,
		logger:        logger,
	}
}

// RegisterRoutes loads the embedded templates and registers the page route
func (c *PageController) RegisterRoutes(router *gin.Engine) {
	router.SetHTMLTemplate(template.Must(template.New("").ParseFS(templateFS, "templates/*.html")))
	router.GET("/", c.Index)
}

// Index renders the control page. Store failures are shown on the page
// with an empty device list rather than as an error status.
func (c *PageController) Index(ctx *gin.Context) {
	result, err := c.deviceService.ListDevices(ctx)
	if err != nil {
		message := err.Error()
		if errors.Is(err, interfaces.ErrStoreUnavailable) {
			message = storeUnavailableMessage
		} else {
			c.logger.ErrorWithError(err, "Error in index route")
		}
		ctx.HTML(http.StatusOK, "index.html", gin.H{
			"Devices": []hardware_models.Device{},
			"Error":   message,
		})
		return
	}

	ctx.HTML(http.StatusOK, "index.html", gin.H{
		"Devices": result,
	})
}
