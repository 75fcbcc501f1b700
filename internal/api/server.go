package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/vietanh2810/raffle-api/docs"
	v1 "github.com/vietanh2810/raffle-api/internal/api/handler/v1"
	"github.com/vietanh2810/raffle-api/internal/api/middleware"
	"github.com/vietanh2810/raffle-api/internal/config"
	"github.com/vietanh2810/raffle-api/internal/pkg/approvalcode"
	"github.com/vietanh2810/raffle-api/internal/repository"
	"github.com/vietanh2810/raffle-api/internal/repository/cache"
	"github.com/vietanh2810/raffle-api/internal/repository/dao"
	"github.com/vietanh2810/raffle-api/internal/service"
)

// multipartOverhead leaves room for the boundaries, part headers and the
// text fields sent alongside an upload.
const multipartOverhead = 1 << 20

// Deps are the collaborators built outside the HTTP layer.
type Deps struct {
	Notifier service.Notifier
	Uploads  v1.FileStore
	// Cache is optional.
	Cache *cache.SoldNumbersCache
}

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
	Feed   *v1.FeedHub
}

func NewServer(conf *config.AppConfig, db *gorm.DB, deps Deps) (*Server, error) {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
		Feed:   v1.NewFeedHub(),
	}

	s.MountMiddlewares()

	raffleRepo := repository.NewRaffleRepository(dao.NewRaffleDAO(db))
	ticketRepo := repository.NewTicketRepository(dao.NewTicketDAO(db))

	authHandler, err := s.initAuthHandler()
	if err != nil {
		return nil, err
	}
	raffleHandler := s.initRaffleHandler(raffleRepo, ticketRepo, deps)
	ticketHandler := s.initTicketHandler(raffleRepo, ticketRepo, deps)
	dollarHandler := v1.NewDollarHandler(service.NewDollarService(repository.NewDollarRepository(dao.NewDollarDAO(db))))
	uploadHandler := v1.NewUploadHandler(deps.Uploads)

	s.MountHandlers(authHandler, raffleHandler, ticketHandler, dollarHandler, uploadHandler)

	return s, nil
}

func (s *Server) initAuthHandler() (*v1.AuthHandler, error) {
	svc, err := service.NewAuthService(s.Config.API.AdminSecret, s.Config.API.JWTSigningKey, s.Config.API.AdminTokenTTL)
	if err != nil {
		return nil, err
	}

	return v1.NewAuthHandler(svc), nil
}

func (s *Server) initRaffleHandler(raffleRepo *repository.RaffleRepository, ticketRepo *repository.TicketRepository, deps Deps) *v1.RaffleHandler {
	svc := service.NewRaffleService(raffleRepo, ticketRepo).WithPublisher(s.Feed)
	if deps.Cache != nil {
		svc.WithCache(deps.Cache)
	}

	return v1.NewRaffleHandler(svc)
}

func (s *Server) initTicketHandler(raffleRepo *repository.RaffleRepository, ticketRepo *repository.TicketRepository, deps Deps) *v1.TicketHandler {
	svc := service.NewTicketService(ticketRepo, raffleRepo, approvalcode.New(), deps.Notifier, s.Config.API.MaxCodes).
		WithPublisher(s.Feed)
	if deps.Cache != nil {
		svc.WithCache(deps.Cache)
	}

	return v1.NewTicketHandler(svc, deps.Uploads)
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
	s.Router.MaxMultipartMemory = 8 << 20
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	raffleHandler *v1.RaffleHandler,
	ticketHandler *v1.TicketHandler,
	dollarHandler *v1.DollarHandler,
	uploadHandler *v1.UploadHandler,
) {
	const basePath = "/api"

	admin := middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT()
	uploadLimit := middleware.LimitBody(s.Config.Storage.MaxUploadSize + multipartOverhead)

	public := s.Router.Group(basePath)
	{
		public.POST("/admin/auth", authHandler.HandleAdminAuth)
		public.GET("/dollar", dollarHandler.HandleGetDollar)
		public.GET("/raffles", raffleHandler.HandleListRaffles)
		public.POST("/tickets", uploadLimit, ticketHandler.HandleCreateTicket)
		public.GET("/tickets/sold-numbers", ticketHandler.HandleSoldNumbers)
		public.GET("/tickets/check", ticketHandler.HandleCheckCode)
		public.POST("/tickets/check", ticketHandler.HandleCheckEmail)
		public.GET("/tickets/live", s.Feed.HandleLiveFeed)
		public.POST("/uploads", uploadLimit, uploadHandler.HandleUpload)
	}

	private := s.Router.Group(basePath, admin)
	{
		private.PUT("/dollar", dollarHandler.HandleUpdateDollar)
		private.POST("/raffles", raffleHandler.HandleCreateRaffle)
		private.DELETE("/raffles", raffleHandler.HandleDeleteRaffle)
		private.POST("/raffles/toggle-visibility", raffleHandler.HandleToggleVisibility)
		private.GET("/tickets", ticketHandler.HandleListTickets)
		private.GET("/tickets/top-buyers", ticketHandler.HandleTopBuyers)
		private.POST("/tickets/approve/:id", ticketHandler.HandleApproveTicket)
		private.POST("/tickets/reject/:id", ticketHandler.HandleRejectTicket)
		private.POST("/tickets/resend/:id", ticketHandler.HandleResendTicket)
		private.PUT("/tickets/update-contact/:id", ticketHandler.HandleUpdateContact)
	}

	s.Router.Static("/images", s.Config.Storage.ImagesDir)
	s.Router.Static("/uploads", s.Config.Storage.UploadsDir)

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Raffle API"
	docs.SwaggerInfo.Description = "Ticket sales, approval codes and buyer lookups for a single raffle."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
