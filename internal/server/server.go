package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/verlyx/hub/internal/auth"
	authdomain "github.com/verlyx/hub/internal/auth/domain"
	"github.com/verlyx/hub/internal/authorization"
	"github.com/verlyx/hub/internal/config"
	"github.com/verlyx/hub/internal/deal"
	dealdomain "github.com/verlyx/hub/internal/deal/domain"
	"github.com/verlyx/hub/internal/document"
	documentdomain "github.com/verlyx/hub/internal/document/domain"
	"github.com/verlyx/hub/internal/events"
	"github.com/verlyx/hub/internal/finance"
	financedomain "github.com/verlyx/hub/internal/finance/domain"
	"github.com/verlyx/hub/internal/mycompany"
	mycompanydomain "github.com/verlyx/hub/internal/mycompany/domain"
	"github.com/verlyx/hub/internal/notification"
	notificationdomain "github.com/verlyx/hub/internal/notification/domain"
	"github.com/verlyx/hub/internal/observability"
	obsmiddleware "github.com/verlyx/hub/internal/observability/logger"
	obsmetrics "github.com/verlyx/hub/internal/observability/metrics"
	obstracing "github.com/verlyx/hub/internal/observability/tracing"
	"github.com/verlyx/hub/internal/organization"
	organizationdomain "github.com/verlyx/hub/internal/organization/domain"
	"github.com/verlyx/hub/internal/payment"
	paymentdomain "github.com/verlyx/hub/internal/payment/domain"
	"github.com/verlyx/hub/internal/pdfgen"
	pdfgendomain "github.com/verlyx/hub/internal/pdfgen/domain"
	"github.com/verlyx/hub/internal/project"
	projectdomain "github.com/verlyx/hub/internal/project/domain"
	"github.com/verlyx/hub/internal/providers"
	"github.com/verlyx/hub/internal/ratelimit"
	"github.com/verlyx/hub/internal/task"
	taskdomain "github.com/verlyx/hub/internal/task/domain"
	"github.com/verlyx/hub/internal/taskcomment"
	taskcommentdomain "github.com/verlyx/hub/internal/taskcomment/domain"
	"github.com/verlyx/hub/internal/workspace"
	workspacedomain "github.com/verlyx/hub/internal/workspace/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	Services,
	fx.Provide(NewServer),
	fx.Invoke(run),
)

// Services wires every domain module the HTTP layer depends on.
var Services = fx.Options(
	authorization.Module,
	events.Module,
	ratelimit.Module,
	providers.Module,
	auth.Module,
	mycompany.Module,
	deal.Module,
	organization.Module,
	project.Module,
	task.Module,
	taskcomment.Module,
	document.Module,
	workspace.Module,
	finance.Module,
	notification.Module,
	payment.Module,
	pdfgen.Module,
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(CORS(corsOrigins))
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, httpMetrics, cfg.CORSOrigins)
}

func run(lc fx.Lifecycle, cfg config.Config, s *Server, log *zap.Logger) {
	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", srv.Addr), zap.String("prefix", "/"+cfg.APIPrefix))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine            *gin.Engine
	cfg               config.Config
	authsvc           authdomain.Service
	myCompanySvc      mycompanydomain.Service
	dealSvc           dealdomain.Service
	organizationSvc   organizationdomain.Service
	projectSvc        projectdomain.Service
	taskSvc           taskdomain.Service
	taskCommentSvc    taskcommentdomain.Service
	documentSvc       documentdomain.Service
	workspaceSvc      workspacedomain.Service
	financeSvc        financedomain.Service
	notificationSvc   notificationdomain.Service
	paymentSvc        paymentdomain.Service
	paymentWebhookSvc paymentdomain.WebhookService
	pdfSvc            pdfgendomain.Service
	limiter           ratelimit.Limiter
	obsMetrics        *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin               *gin.Engine
	Cfg               config.Config
	Authsvc           authdomain.Service
	MyCompanySvc      mycompanydomain.Service
	DealSvc           dealdomain.Service
	OrganizationSvc   organizationdomain.Service
	ProjectSvc        projectdomain.Service
	TaskSvc           taskdomain.Service
	TaskCommentSvc    taskcommentdomain.Service
	DocumentSvc       documentdomain.Service
	WorkspaceSvc      workspacedomain.Service
	FinanceSvc        financedomain.Service
	NotificationSvc   notificationdomain.Service
	PaymentSvc        paymentdomain.Service
	PaymentWebhookSvc paymentdomain.WebhookService
	PDFSvc            pdfgendomain.Service
	Limiter           ratelimit.Limiter   `optional:"true"`
	ObsMetrics        *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:            p.Gin,
		cfg:               p.Cfg,
		authsvc:           p.Authsvc,
		myCompanySvc:      p.MyCompanySvc,
		dealSvc:           p.DealSvc,
		organizationSvc:   p.OrganizationSvc,
		projectSvc:        p.ProjectSvc,
		taskSvc:           p.TaskSvc,
		taskCommentSvc:    p.TaskCommentSvc,
		documentSvc:       p.DocumentSvc,
		workspaceSvc:      p.WorkspaceSvc,
		financeSvc:        p.FinanceSvc,
		notificationSvc:   p.NotificationSvc,
		paymentSvc:        p.PaymentSvc,
		paymentWebhookSvc: p.PaymentWebhookSvc,
		pdfSvc:            p.PDFSvc,
		limiter:           p.Limiter,
		obsMetrics:        p.ObsMetrics,
	}

	svc.registerRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/" + s.cfg.APIPrefix)

	public := api.Group("", s.RateLimit())
	protected := api.Group("", s.AuthRequired(), CompanyContext(), s.RateLimit())

	s.registerAuthRoutes(public, protected)
	s.registerMyCompanyRoutes(protected)
	s.registerDealRoutes(protected)
	s.registerOrganizationRoutes(protected)
	s.registerProjectRoutes(protected)
	s.registerTaskRoutes(protected)
	s.registerTaskCommentRoutes(protected)
	s.registerDocumentRoutes(protected)
	s.registerWorkspaceRoutes(protected)
	s.registerFinanceRoutes(protected)
	s.registerNotificationRoutes(protected)
	s.registerPaymentRoutes(public, protected)
	s.registerPDFRoutes(protected)
}

func (s *Server) registerAuthRoutes(public, protected *gin.RouterGroup) {
	public.POST("/auth/register", s.Register)
	public.POST("/auth/login", s.Login)
	public.POST("/auth/refresh", s.Refresh)

	protected.POST("/auth/logout", s.Logout)
	protected.GET("/auth/me", s.Me)
}

func (s *Server) registerMyCompanyRoutes(api *gin.RouterGroup) {
	api.GET("/my-companies", s.ListMyCompanies)
	api.POST("/my-companies", s.CreateMyCompany)
	api.GET("/my-companies/:id", s.GetMyCompany)
	api.PATCH("/my-companies/:id", s.UpdateMyCompany)
	api.DELETE("/my-companies/:id", s.DeleteMyCompany)

	api.GET("/my-companies/:id/members", s.ListCompanyMembers)
	api.POST("/my-companies/:id/members", s.AddCompanyMember)
	api.PATCH("/my-companies/:id/members/:memberId", s.UpdateCompanyMember)
	api.DELETE("/my-companies/:id/members/:memberId", s.RemoveCompanyMember)
}

func (s *Server) registerDealRoutes(api *gin.RouterGroup) {
	api.POST("/deals", s.CreateDeal)
	api.GET("/deals", s.ListDeals)
	api.GET("/deals/pipeline-stats/:myCompanyId", s.GetPipelineStats)
	api.GET("/deals/:id", s.GetDeal)
	api.PUT("/deals/:id", s.UpdateDeal)
	api.DELETE("/deals/:id", s.DeleteDeal)
	api.POST("/deals/:id/move-stage", s.MoveDealStage)
	api.POST("/deals/:id/create-project", s.CreateProjectFromDeal)
}

func (s *Server) registerOrganizationRoutes(api *gin.RouterGroup) {
	api.POST("/organizations", s.CreateOrganization)
	api.GET("/organizations", s.ListOrganizations)
	api.GET("/organizations/hierarchy/:clientId", s.GetOrganizationHierarchy)
	api.GET("/organizations/:id", s.GetOrganization)
	api.PUT("/organizations/:id", s.UpdateOrganization)
	api.DELETE("/organizations/:id", s.DeleteOrganization)
}

func (s *Server) registerProjectRoutes(api *gin.RouterGroup) {
	api.POST("/projects", s.CreateProject)
	api.GET("/projects", s.ListProjects)
	api.GET("/projects/stats", s.GetProjectStats)
	api.GET("/projects/:id", s.GetProject)
	api.PATCH("/projects/:id", s.UpdateProject)
	api.DELETE("/projects/:id", s.DeleteProject)
}

func (s *Server) registerTaskRoutes(api *gin.RouterGroup) {
	api.POST("/tasks", s.CreateTask)
	api.GET("/tasks", s.ListTasks)
	api.GET("/tasks/stats/:myCompanyId", s.GetTaskStats)
	api.GET("/tasks/overdue/:myCompanyId", s.ListOverdueTasks)
	api.GET("/tasks/hierarchy/:taskId", s.GetTaskHierarchy)
	api.GET("/tasks/:id", s.GetTask)
	api.PATCH("/tasks/:id", s.UpdateTask)
	api.DELETE("/tasks/:id", s.DeleteTask)
}

func (s *Server) registerTaskCommentRoutes(api *gin.RouterGroup) {
	api.POST("/task-comments", s.CreateTaskComment)
	api.GET("/task-comments", s.ListTaskComments)
	api.GET("/task-comments/:id", s.GetTaskComment)
	api.PATCH("/task-comments/:id", s.UpdateTaskComment)
	api.DELETE("/task-comments/:id", s.DeleteTaskComment)
	api.POST("/task-comments/:id/reactions", s.AddTaskCommentReaction)
	api.DELETE("/task-comments/:id/reactions/:emoji", s.RemoveTaskCommentReaction)
}

func (s *Server) registerDocumentRoutes(api *gin.RouterGroup) {
	api.POST("/documents", s.CreateDocument)
	api.GET("/documents", s.ListDocuments)
	api.GET("/documents/:id", s.GetDocument)
	api.PATCH("/documents/:id", s.UpdateDocument)
	api.DELETE("/documents/:id", s.DeleteDocument)
}

func (s *Server) registerWorkspaceRoutes(api *gin.RouterGroup) {
	ws := api.Group("/workspace")

	ws.GET("/pages", s.ListPages)
	ws.POST("/pages", s.CreatePage)
	ws.GET("/pages/:id", s.GetPage)
	ws.PATCH("/pages/:id", s.UpdatePage)
	ws.DELETE("/pages/:id", s.DeletePage)
	ws.POST("/pages/:id/duplicate", s.DuplicatePage)

	ws.GET("/blocks", s.ListBlocks)
	ws.POST("/blocks", s.CreateBlock)
	ws.POST("/blocks/reorder", s.ReorderBlocks)
	ws.PATCH("/blocks/:id", s.UpdateBlock)
	ws.DELETE("/blocks/:id", s.DeleteBlock)

	ws.GET("", s.ListWorkspaces)
	ws.POST("", s.CreateWorkspace)
	ws.GET("/:id", s.GetWorkspace)
	ws.PATCH("/:id", s.UpdateWorkspace)
	ws.DELETE("/:id", s.DeleteWorkspace)
}

func (s *Server) registerFinanceRoutes(api *gin.RouterGroup) {
	fin := api.Group("/finance")

	fin.GET("/accounts", s.ListAccounts)
	fin.POST("/accounts", s.CreateAccount)
	fin.PATCH("/accounts/:id", s.UpdateAccount)
	fin.DELETE("/accounts/:id", s.DeleteAccount)

	fin.GET("/categories", s.ListCategories)
	fin.POST("/categories", s.CreateCategory)

	fin.GET("/expenses", s.ListExpenses)
	fin.POST("/expenses", s.CreateExpense)
	fin.GET("/expenses/:id", s.GetExpense)
	fin.PATCH("/expenses/:id", s.UpdateExpense)
	fin.DELETE("/expenses/:id", s.DeleteExpense)

	fin.GET("/incomes", s.ListIncomes)
	fin.POST("/incomes", s.CreateIncome)
	fin.GET("/incomes/:id", s.GetIncome)
	fin.PATCH("/incomes/:id", s.UpdateIncome)
	fin.DELETE("/incomes/:id", s.DeleteIncome)

	fin.GET("/budgets", s.ListBudgets)
	fin.POST("/budgets", s.CreateBudget)
	fin.DELETE("/budgets/:id", s.DeleteBudget)

	fin.GET("/summary", s.GetFinanceSummary)
}

func (s *Server) registerNotificationRoutes(api *gin.RouterGroup) {
	api.GET("/notifications", s.ListNotifications)
	api.POST("/notifications", s.CreateNotification)
	api.POST("/notifications/mark-all-read", s.MarkAllNotificationsRead)
	api.PATCH("/notifications/:id", s.MarkNotificationRead)
	api.DELETE("/notifications/:id", s.DeleteNotification)
}

func (s *Server) registerPaymentRoutes(public, protected *gin.RouterGroup) {
	public.GET("/payments/get-link", s.GetPaymentLink)
	public.POST("/payments/process", s.ProcessPayment)
	public.GET("/webhooks/dlocal", s.DLocalWebhookHealth)
	public.POST("/webhooks/dlocal", s.HandleDLocalWebhook)

	protected.POST("/payments/create-link", s.CreatePaymentLink)
	protected.POST("/payments/:orderId/refund", s.RefundPayment)
}

func (s *Server) registerPDFRoutes(api *gin.RouterGroup) {
	pdf := api.Group("/pdf-generator")

	pdf.POST("/templates", s.CreatePDFTemplate)
	pdf.GET("/templates", s.ListPDFTemplates)
	pdf.GET("/templates/:id", s.GetPDFTemplate)
	pdf.PATCH("/templates/:id", s.UpdatePDFTemplate)
	pdf.DELETE("/templates/:id", s.DeletePDFTemplate)

	pdf.POST("/generate", s.GeneratePDF)
	pdf.GET("/generated", s.ListGeneratedPDFs)
	pdf.GET("/generated/:id", s.GetGeneratedPDF)
	pdf.GET("/generated/:id/download", s.DownloadGeneratedPDF)
	pdf.DELETE("/generated/:id", s.DeleteGeneratedPDF)
}
