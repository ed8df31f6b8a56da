package jobs

import (
	"log/slog"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Terminal jobs older than this are pruned, along with their log files.
const jobRetention = 24 * time.Hour

// Handler is the handler for the jobs feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the jobs feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type jobView struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	Status    JobStatus `json:"status"`
	Progress  int       `json:"progress"`
	Message   string    `json:"message"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
}

func toView(job *Job) jobView {
	return jobView{
		ID:        job.ID,
		Type:      job.Type,
		Name:      job.Name,
		Status:    job.Status,
		Progress:  job.Progress,
		Message:   job.Message,
		CreatedAt: job.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt: job.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ListJobs returns all known jobs, newest first, pruning stale ones.
func (h *Handler) ListJobs(c *fiber.Ctx) error {
	slog.Debug("ListJobs handler called")
	h.service.CleanupOldJobs(jobRetention)
	jobs := h.service.GetJobs()
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.After(jobs[j].CreatedAt) })

	views := make([]jobView, 0, len(jobs))
	for _, job := range jobs {
		views = append(views, toView(job))
	}
	return c.JSON(views)
}

// GetJob returns one job by id.
func (h *Handler) GetJob(c *fiber.Ctx) error {
	job, ok := h.service.GetJob(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "job not found"})
	}
	return c.JSON(toView(job))
}

// CancelJob cancels a running or pending job.
func (h *Handler) CancelJob(c *fiber.Ctx) error {
	slog.Debug("CancelJob handler called", "id", c.Params("id"))
	if err := h.service.CancelJob(c.Params("id")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true})
}
