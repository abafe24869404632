// server/internal/api/routes/routes.go
package routes

import (
	"time"

	"disaster-relief-api-server/config"
	"disaster-relief-api-server/internal/api/handlers"
	"disaster-relief-api-server/internal/api/middleware"
	"disaster-relief-api-server/internal/dispatch"
	"disaster-relief-api-server/internal/models"
	"disaster-relief-api-server/internal/routing"
	"disaster-relief-api-server/internal/socket"
	"disaster-relief-api-server/internal/weather"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRouter receives the shared components and wires every route group.
func SetupRouter(
	cfg config.Config,
	db *mongo.Database,
	osrm routing.Router,
	resolver *routing.Resolver,
	svc *dispatch.Service,
	weatherClient *weather.Client,
	wsHub *socket.Hub,
	log zerolog.Logger,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:          12 * time.Hour,
	}))

	jwtSecret := []byte(cfg.JWT.Secret)
	jwtExpiry, err := time.ParseDuration(cfg.JWT.Expiration)
	if err != nil {
		jwtExpiry = 24 * time.Hour
	}

	authHandler := &handlers.AuthHandler{DB: db, JWTSecret: jwtSecret, JWTExpiry: jwtExpiry}
	requesterHandler := &handlers.RequesterHandler{DB: db}
	centreHandler := &handlers.ReliefCentreHandler{DB: db, Resolver: resolver}
	requestHandler := &handlers.ReliefRequestHandler{DB: db, Service: svc, Hub: wsHub}
	weatherHandler := &handlers.WeatherHandler{Client: weatherClient}
	routeHandler := &handlers.RouteHandler{Router: osrm}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub, Service: svc, Log: log}

	apiV1 := router.Group("/api/v1")
	{
		// Tracking socket for requester devices.
		apiV1.GET("/ws/tracking", webSocketHandler.ServeTracking)

		// === PUBLIC ROUTES ===

		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		public := apiV1.Group("/")
		{
			// Victim devices carry no credential, only their device token.
			public.POST("/requesters/register-device", requesterHandler.RegisterDevice)

			public.GET("/relief-centres", centreHandler.GetAllCentres)
			public.POST("/relief-centres/nearest", centreHandler.Nearest)

			public.POST("/route", routeHandler.ComputeRoute)

			public.POST("/relief-requests", requestHandler.CreateRequest)
			public.GET("/relief-requests/:id/tracking", requestHandler.Tracking)

			public.GET("/weather", weatherHandler.Current)
			public.POST("/weather", weatherHandler.CurrentByBody)
			public.POST("/weather/route", weatherHandler.RouteWeather)
		}

		// === PROTECTED ROUTES ===

		staff := apiV1.Group("/")
		staff.Use(middleware.Authenticate(jwtSecret))
		{
			staff.GET("/auth/me", authHandler.Me)
		}

		volunteer := apiV1.Group("/")
		volunteer.Use(middleware.Authenticate(jwtSecret))
		volunteer.Use(middleware.Authorize(models.RoleVolunteer, models.RoleAdmin))
		{
			requests := volunteer.Group("/relief-requests")
			{
				requests.GET("/", requestHandler.GetAllRequests)
				requests.POST("/:id/accept", requestHandler.Accept)
				requests.PATCH("/:id/status", requestHandler.UpdateStatus)
			}

			dispatches := volunteer.Group("/dispatches")
			{
				dispatches.GET("/my-active", requestHandler.MyActiveDispatch)
				dispatches.POST("/:id/location", requestHandler.UpdateLocation)
			}
		}

		admin := apiV1.Group("/admin")
		admin.Use(middleware.Authenticate(jwtSecret))
		admin.Use(middleware.Authorize(models.RoleAdmin))
		{
			centres := admin.Group("/relief-centres")
			{
				centres.POST("/", centreHandler.CreateCentre)
				centres.PUT("/:id", centreHandler.UpdateCentre)
				centres.DELETE("/:id", centreHandler.DeleteCentre)
			}
		}
	}

	return router
}
