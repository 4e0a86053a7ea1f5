package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-backend/internal/models"
	"portfolio-backend/internal/service"
)

const contactAcceptedMessage = "Thanks for your message! I'll get back to you soon."

// PortfolioHandler serves the portfolio pages and the contact form.
type PortfolioHandler struct {
	portfolio service.PortfolioUseCase
	contact   service.ContactUseCase
	flashes   *FlashStore
}

func NewPortfolioHandler(portfolio service.PortfolioUseCase, contact service.ContactUseCase, flashes *FlashStore) *PortfolioHandler {
	return &PortfolioHandler{portfolio: portfolio, contact: contact, flashes: flashes}
}

func (h *PortfolioHandler) Home(c *gin.Context) {
	home, err := h.portfolio.Home()
	if err != nil {
		respondError(c, err)
		return
	}
	renderPage(c, h.flashes, "Home", home)
}

func (h *PortfolioHandler) About(c *gin.Context) {
	about, err := h.portfolio.About()
	if err != nil {
		respondError(c, err)
		return
	}
	renderPage(c, h.flashes, "About", about)
}

func (h *PortfolioHandler) Projects(c *gin.Context) {
	projects, err := h.portfolio.Projects()
	if err != nil {
		respondError(c, err)
		return
	}
	renderPage(c, h.flashes, "Projects/Index", gin.H{"projects": projects})
}

func (h *PortfolioHandler) Project(c *gin.Context) {
	project, err := h.portfolio.Project(c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	renderPage(c, h.flashes, "Projects/Show", gin.H{"project": project})
}

func (h *PortfolioHandler) Services(c *gin.Context) {
	services, err := h.portfolio.Services()
	if err != nil {
		respondError(c, err)
		return
	}
	renderPage(c, h.flashes, "Services", gin.H{"services": services})
}

func (h *PortfolioHandler) Contact(c *gin.Context) {
	profile, err := h.portfolio.Profile()
	if err != nil {
		respondError(c, err)
		return
	}
	renderPage(c, h.flashes, "Contact", gin.H{"profile": profile})
}

// SubmitContact answers a discarded honeypot submission exactly like an accepted one.
func (h *PortfolioHandler) SubmitContact(c *gin.Context) {
	var req models.ContactRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form submission"})
		return
	}

	_, _, err := h.contact.Submit(c.Request.Context(), service.ContactSubmission{
		Request:   req,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	old := map[string]string{"name": req.Name, "email": req.Email, "subject": req.Subject, "message": req.Message}
	if handleFormError(c, h.flashes, err, old, "/contact", "") {
		return
	}

	h.flashes.Set(c, Flash{Success: contactAcceptedMessage})
	redirectBack(c, "/contact", "")
}
