package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/smartkisan/kisan-backend/internal/crops"
	"github.com/smartkisan/kisan-backend/internal/users"
	"github.com/smartkisan/kisan-backend/pkg/config"
	"github.com/smartkisan/kisan-backend/pkg/db"
	"github.com/smartkisan/kisan-backend/pkg/db/models"
	"github.com/smartkisan/kisan-backend/pkg/enums"
	"github.com/smartkisan/kisan-backend/pkg/logger"
	"github.com/smartkisan/kisan-backend/pkg/security"
	"github.com/smartkisan/kisan-backend/pkg/types"
)

type seedUser struct {
	name     string
	email    string
	phone    string
	role     enums.Role
	language enums.Language
	location types.Location
	crops    []seedCrop
}

type seedCrop struct {
	name        string
	category    enums.CropCategory
	variety     string
	quantity    float64
	unit        enums.CropUnit
	price       float64
	priceUnit   enums.PriceUnit
	quality     enums.CropQuality
	harvestedAt int // days ago
	featured    bool
}

var sampleUsers = []seedUser{
	{
		name:     "Ramesh Patel",
		email:    "ramesh.farmer@example.com",
		phone:    "9876543210",
		role:     enums.RoleFarmer,
		language: enums.LanguageGujarati,
		location: types.Location{Lng: 72.5714, Lat: 23.0225, Address: "Sanand", State: "Gujarat", District: "Ahmedabad", Pincode: "382110"},
		crops: []seedCrop{
			{name: "Wheat", category: enums.CropCategoryCereals, variety: "Lok-1", quantity: 50, unit: enums.CropUnitQuintal, price: 2275, priceUnit: enums.PriceUnitQuintal, quality: enums.CropQualityPremium, harvestedAt: 20, featured: true},
			{name: "Groundnut", category: enums.CropCategoryOilseeds, variety: "GG-20", quantity: 12, unit: enums.CropUnitQuintal, price: 6377, priceUnit: enums.PriceUnitQuintal, quality: enums.CropQualityStandard, harvestedAt: 45},
		},
	},
	{
		name:     "Lakshmi Reddy",
		email:    "lakshmi.farmer@example.com",
		phone:    "9876543211",
		role:     enums.RoleFarmer,
		language: enums.LanguageTelugu,
		location: types.Location{Lng: 78.4867, Lat: 17.3850, Address: "Shamshabad", State: "Telangana", District: "Rangareddy", Pincode: "501218"},
		crops: []seedCrop{
			{name: "Tomato", category: enums.CropCategoryVegetables, variety: "Arka Rakshak", quantity: 800, unit: enums.CropUnitKg, price: 18, priceUnit: enums.PriceUnitKg, quality: enums.CropQualityStandard, harvestedAt: 2, featured: true},
			{name: "Red Chilli", category: enums.CropCategorySpices, variety: "Guntur Sannam", quantity: 5, unit: enums.CropUnitQuintal, price: 14500, priceUnit: enums.PriceUnitQuintal, quality: enums.CropQualityPremium, harvestedAt: 30},
			{name: "Mango", category: enums.CropCategoryFruits, variety: "Banganapalli", quantity: 300, unit: enums.CropUnitKg, price: 60, priceUnit: enums.PriceUnitKg, quality: enums.CropQualityPremium, harvestedAt: 4},
		},
	},
	{
		name:     "Anita Sharma",
		email:    "anita.buyer@example.com",
		phone:    "9876543212",
		role:     enums.RoleBuyer,
		language: enums.LanguageHindi,
		location: types.Location{Lng: 77.2090, Lat: 28.6139, Address: "Azadpur Mandi", State: "Delhi", District: "North Delhi", Pincode: "110033"},
	},
	{
		name:     "Kisan Admin",
		email:    "admin@example.com",
		phone:    "9876543213",
		role:     enums.RoleAdmin,
		language: enums.LanguageEnglish,
	},
}

func main() {
	password := flag.String("password", "password123", "password assigned to every seeded user")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "seed"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})
	ctx := logg.WithField(context.Background(), "env", cfg.App.Env)

	if cfg.App.IsProd() {
		logg.Warn(ctx, "refusing to seed a production database")
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	hash, err := security.NewHasher(cfg.Password).Hash(*password)
	if err != nil {
		logg.Error(ctx, "failed to hash seed password", err)
		os.Exit(1)
	}

	now := time.Now().UTC()
	var createdUsers, createdCrops int
	err = dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		usersRepo := users.NewRepository(tx)
		cropsRepo := crops.NewRepository(tx)
		for _, su := range sampleUsers {
			exists, err := usersRepo.ExistsByEmailOrPhone(ctx, su.email, su.phone)
			if err != nil {
				return err
			}
			if exists {
				logg.Info(logg.WithField(ctx, "email", su.email), "seed user already present")
				continue
			}
			location := su.location
			user, err := usersRepo.Create(ctx, users.CreateUserDTO{
				Name:         su.name,
				Email:        su.email,
				Phone:        su.phone,
				PasswordHash: hash,
				Role:         su.role,
				Language:     su.language,
				Location:     &location,
			})
			if err != nil {
				return err
			}
			createdUsers++
			for _, sc := range su.crops {
				if err := cropsRepo.Create(ctx, sc.model(user.ID, su.location, now)); err != nil {
					return err
				}
				createdCrops++
			}
		}
		return nil
	})
	if err != nil {
		logg.Error(ctx, "seed failed", err)
		os.Exit(1)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"users": createdUsers,
		"crops": createdCrops,
	}), "seed complete")
}

func (sc seedCrop) model(farmerID uuid.UUID, location types.Location, now time.Time) *models.Crop {
	return &models.Crop{
		Name:           sc.name,
		Description:    sc.variety + " " + sc.name + " direct from the farm",
		Category:       sc.category,
		Variety:        sc.variety,
		FarmerID:       farmerID,
		Quantity:       sc.quantity,
		Unit:           sc.unit,
		Price:          sc.price,
		PricePerUnit:   sc.priceUnit,
		Quality:        sc.quality,
		HarvestDate:    now.AddDate(0, 0, -sc.harvestedAt),
		Location:       location,
		Images:         pq.StringArray{},
		Certifications: pq.StringArray{},
		Status:         enums.CropStatusAvailable,
		IsActive:       true,
		Featured:       sc.featured,
	}
}
