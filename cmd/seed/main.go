package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"wine-cellar-be/internal/model"
	"wine-cellar-be/pkg/agent/store"
	"wine-cellar-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDB(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	userID := seedDemoUser(db)
	seedDemoCellar(db, userID)

	log.Println("✅ Seeding complete")
}

func seedDemoUser(db *gorm.DB) uuid.UUID {
	var existing model.User
	if err := db.Where("email = ?", "demo@cellar.local").First(&existing).Error; err == nil {
		log.Println("Demo user already exists, skipping...")
		return existing.Id
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Error: Failed to hash password: %v", err)
	}
	hashStr := string(hash)

	user := model.User{
		Id:           uuid.New(),
		Email:        "demo@cellar.local",
		PasswordHash: &hashStr,
		FullName:     "Demo Taster",
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("Error: Failed to create demo user: %v", err)
	}
	log.Println("Seeded demo user demo@cellar.local")
	return user.Id
}

type seedWine struct {
	region   string
	country  string
	producer string
	name     string
	vintage  int
	kind     string
	grapes   []string
	size     string
	quantity int
}

func seedDemoCellar(db *gorm.DB, userID uuid.UUID) {
	wines := []seedWine{
		{region: "Burgundy", country: "France", producer: "Domaine Leflaive", name: "Puligny-Montrachet", vintage: 2019, kind: "white", grapes: []string{"Chardonnay"}, size: "750ml", quantity: 3},
		{region: "Tuscany", country: "Italy", producer: "Tenuta San Guido", name: "Sassicaia", vintage: 2016, kind: "red", grapes: []string{"Cabernet Sauvignon", "Cabernet Franc"}, size: "750ml", quantity: 2},
		{region: "Champagne", country: "France", producer: "Krug", name: "Grande Cuvée", vintage: 0, kind: "sparkling", grapes: []string{"Chardonnay", "Pinot Noir", "Pinot Meunier"}, size: "750ml", quantity: 1},
	}

	for _, w := range wines {
		key := store.LookupKey(w.producer, w.name, vintageLabel(w.vintage))

		var count int64
		db.Model(&model.Wine{}).
			Where("user_id = ? AND LOWER(name) = LOWER(?)", userID, w.name).
			Count(&count)
		if count > 0 {
			log.Printf("Wine '%s' already exists, skipping...", w.name)
			continue
		}

		region := model.Region{Id: uuid.New(), UserId: userID, Name: w.region, Country: w.country}
		if err := db.Create(&region).Error; err != nil {
			log.Fatalf("Error: Failed to create region %s: %v", w.region, err)
		}

		producer := model.Producer{Id: uuid.New(), UserId: userID, RegionId: &region.Id, Name: w.producer}
		if err := db.Create(&producer).Error; err != nil {
			log.Fatalf("Error: Failed to create producer %s: %v", w.producer, err)
		}

		wine := model.Wine{
			Id:             uuid.New(),
			UserId:         userID,
			ProducerId:     &producer.Id,
			RegionId:       &region.Id,
			Name:           w.name,
			Type:           w.kind,
			GrapeVarieties: datatypes.NewJSONSlice(w.grapes),
		}
		if w.vintage > 0 {
			v := w.vintage
			wine.Vintage = &v
		}
		if err := db.Create(&wine).Error; err != nil {
			log.Fatalf("Error: Failed to create wine %s: %v", w.name, err)
		}

		bottle := model.Bottle{
			Id:       uuid.New(),
			UserId:   userID,
			WineId:   wine.Id,
			Size:     w.size,
			Quantity: w.quantity,
		}
		now := time.Now()
		bottle.PurchaseDate = &now
		if err := db.Create(&bottle).Error; err != nil {
			log.Fatalf("Error: Failed to create bottle for %s: %v", w.name, err)
		}

		log.Printf("Seeded %s (%s)", w.name, key)
	}
}

func vintageLabel(v int) string {
	if v <= 0 {
		return "NV"
	}
	return strconv.Itoa(v)
}
