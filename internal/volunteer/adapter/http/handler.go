package http

import (
	"strconv"
	"strings"
	"time"

	apperrors "volunteer-hub/internal/shared/errors"
	"volunteer-hub/internal/shared/httputil"
	"volunteer-hub/internal/shared/utils"
	"volunteer-hub/internal/volunteer/domain/model"
	"volunteer-hub/internal/volunteer/domain/repository"
	"volunteer-hub/internal/volunteer/usecase"

	"github.com/gofiber/fiber/v2"
)

// AccessGuard is the session middleware the routes are protected with.
type AccessGuard interface {
	Protect() fiber.Handler
	RequireSelf(param string) fiber.Handler
}

// Handler serves the opportunity and application routes.
type Handler struct {
	opportunities usecase.OpportunityUsecaseInterface
	applications  usecase.ApplicationUsecaseInterface
	feed          *FeedHandler
	timeout       time.Duration
}

// NewHandler creates the route handler. feed may be nil.
func NewHandler(
	opportunities usecase.OpportunityUsecaseInterface,
	applications usecase.ApplicationUsecaseInterface,
	feed *FeedHandler,
	timeout time.Duration,
) *Handler {
	return &Handler{
		opportunities: opportunities,
		applications:  applications,
		feed:          feed,
		timeout:       timeout,
	}
}

// RegisterRoutes binds every volunteer route to router.
func (h *Handler) RegisterRoutes(router fiber.Router, guard AccessGuard) {
	owner := []fiber.Handler{}
	if h.opportunities.RequiresSession() {
		owner = append(owner, guard.Protect())
	}
	self := []fiber.Handler{guard.Protect(), guard.RequireSelf("email")}

	router.Post("/volunteer", h.CreateOpportunity)
	router.Get("/volunteer", h.ListOpportunities)
	router.Get("/volunteerSection", h.ListOpportunitiesSorted)
	router.Get("/volunteerSecure", append(self, h.ListOwnOpportunities)...)
	router.Get("/volunteer/:id", h.GetOpportunity)
	router.Patch("/volunteer/:id", append(owner, h.UpdateOpportunity)...)
	router.Delete("/volunteer/:id", append(owner, h.DeleteOpportunity)...)
	router.Get("/count", h.CountOpportunities)

	router.Post("/becomeVolunteer", h.Apply)
	router.Get("/becomeVolunteer", append(self, h.ListOwnApplications)...)
	router.Delete("/becomeVolunteer/:id", h.DeleteApplication)

	if h.feed != nil {
		h.feed.RegisterRoutes(router, guard.Protect())
	}
}

// Opportunity handlers

// CreateOpportunity handles POST /volunteer.
func (h *Handler) CreateOpportunity(c *fiber.Ctx) error {
	var o model.Opportunity
	if err := c.BodyParser(&o); err != nil {
		return apperrors.NewValidationError("Invalid request body").WithCause(err)
	}

	ctx, cancel := httputil.WithTimeout(c, h.timeout)
	defer cancel()

	res, err := h.opportunities.Create(ctx, &o)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// ListOpportunities handles GET /volunteer?find=&sort=&pageNo=&size=.
func (h *Handler) ListOpportunities(c *fiber.Ctx) error {
	q, err := parseListQuery(c)
	if err != nil {
		return err
	}

	ctx, cancel := httputil.WithTimeout(c, h.timeout)
	defer cancel()

	out, err := h.opportunities.List(ctx, q)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ListOpportunitiesSorted handles GET /volunteerSection.
func (h *Handler) ListOpportunitiesSorted(c *fiber.Ctx) error {
	ctx, cancel := httputil.WithTimeout(c, h.timeout)
	defer cancel()

	out, err := h.opportunities.ListAllSorted(ctx)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ListOwnOpportunities handles GET /volunteerSecure?email=.
func (h *Handler) ListOwnOpportunities(c *fiber.Ctx) error {
	ctx, cancel := httputil.WithTimeout(c, h.timeout)
	defer cancel()

	out, err := h.opportunities.ListByOwner(ctx, c.Query("email"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetOpportunity handles GET /volunteer/:id.
func (h *Handler) GetOpportunity(c *fiber.Ctx) error {
	ctx, cancel := httputil.WithTimeout(c, h.timeout)
	defer cancel()

	o, err := h.opportunities.Get(ctx, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(o)
}

// UpdateOpportunity handles PATCH /volunteer/:id.
func (h *Handler) UpdateOpportunity(c *fiber.Ctx) error {
	var patch model.OpportunityPatch
	if err := c.BodyParser(&patch); err != nil {
		return apperrors.NewValidationError("Invalid request body").WithCause(err)
	}

	ctx, cancel := httputil.WithTimeout(c, h.timeout)
	defer cancel()

	res, err := h.opportunities.Update(ctx, subject(c), c.Params("id"), &patch)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// DeleteOpportunity handles DELETE /volunteer/:id.
func (h *Handler) DeleteOpportunity(c *fiber.Ctx) error {
	ctx, cancel := httputil.WithTimeout(c, h.timeout)
	defer cancel()

	res, err := h.opportunities.Delete(ctx, subject(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// CountOpportunities handles GET /count?filter=. find is accepted as an alias.
func (h *Handler) CountOpportunities(c *fiber.Ctx) error {
	search := c.Query("filter")
	if search == "" {
		search = c.Query("find")
	}

	ctx, cancel := httputil.WithTimeout(c, h.timeout)
	defer cancel()

	n, err := h.opportunities.Count(ctx, search)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"count": n})
}

// Application handlers

// Apply handles POST /becomeVolunteer?id=.
func (h *Handler) Apply(c *fiber.Ctx) error {
	var a model.Application
	if err := c.BodyParser(&a); err != nil {
		return apperrors.NewValidationError("Invalid request body").WithCause(err)
	}

	ctx, cancel := httputil.WithTimeout(c, h.timeout)
	defer cancel()

	res, err := h.applications.Apply(ctx, c.Query("id"), &a)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// ListOwnApplications handles GET /becomeVolunteer?email=.
func (h *Handler) ListOwnApplications(c *fiber.Ctx) error {
	ctx, cancel := httputil.WithTimeout(c, h.timeout)
	defer cancel()

	out, err := h.applications.ListByVolunteer(ctx, c.Query("email"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// DeleteApplication handles DELETE /becomeVolunteer/:id?organizationEmail=.
func (h *Handler) DeleteApplication(c *fiber.Ctx) error {
	ctx, cancel := httputil.WithTimeout(c, h.timeout)
	defer cancel()

	res, err := h.applications.Delete(ctx, c.Params("id"), c.Query("organizationEmail"))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// Helper functions

// subject returns the verified caller, or nil on unguarded routes.
func subject(c *fiber.Ctx) *repository.Subject {
	email, err := utils.GetUserEmailFromContext(c.UserContext())
	if err != nil || email == "" {
		return nil
	}
	return &repository.Subject{
		Email: email,
		Name:  utils.GetUserNameOrDefault(c.UserContext(), ""),
	}
}

func parseListQuery(c *fiber.Ctx) (repository.ListQuery, error) {
	q := repository.ListQuery{
		Search: c.Query("find"),
		Sort:   repository.SortOrder(strings.ToLower(strings.TrimSpace(c.Query("sort")))),
	}

	var err error
	if q.Page, err = intQuery(c, "pageNo"); err != nil {
		return q, err
	}
	if q.Size, err = intQuery(c, "size"); err != nil {
		return q, err
	}
	return q, nil
}

// intQuery parses an optional integer query parameter. Absent means 0.
func intQuery(c *fiber.Ctx, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewValidationError(key+" must be an integer").
			WithCode("INVALID_QUERY").
			WithDetail("value", raw)
	}
	return n, nil
}
