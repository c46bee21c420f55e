// internal/foodfacts/client.go
package foodfacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	ErrInvalidBarcode  = errors.New("barcode must be 8 to 14 digits")
	ErrProductNotFound = errors.New("product not found")

	barcodePattern = regexp.MustCompile(`^\d{8,14}$`)
)

// Product is the subset of an OpenFoodFacts product the service uses.
type Product struct {
	Barcode    string     `json:"barcode"`
	Name       string     `json:"name"`
	Brand      string     `json:"brand"`
	NutriScore string     `json:"nutriScore"`
	ImageURL   string     `json:"imageUrl"`
	Per100g    Nutriments `json:"per100g"`
}

type Nutriments struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Sugars   float64 `json:"sugars"`
	Salt     float64 `json:"salt"`
}

type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
	log       *zap.SugaredLogger
}

func NewClient(baseURL, userAgent string, log *zap.SugaredLogger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

type productResponse struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Product struct {
		ProductName     string `json:"product_name"`
		Brands          string `json:"brands"`
		NutriscoreGrade string `json:"nutriscore_grade"`
		ImageURL        string `json:"image_url"`
		Nutriments      struct {
			EnergyKcal100g    float64 `json:"energy-kcal_100g"`
			Proteins100g      float64 `json:"proteins_100g"`
			Carbohydrates100g float64 `json:"carbohydrates_100g"`
			Fat100g           float64 `json:"fat_100g"`
			Sugars100g        float64 `json:"sugars_100g"`
			Salt100g          float64 `json:"salt_100g"`
		} `json:"nutriments"`
	} `json:"product"`
}

// Lookup fetches a product by EAN/UPC barcode.
func (c *Client) Lookup(ctx context.Context, barcode string) (*Product, error) {
	barcode = strings.TrimSpace(barcode)
	if !barcodePattern.MatchString(barcode) {
		return nil, ErrInvalidBarcode
	}

	reqURL, err := url.Parse(fmt.Sprintf("%s/api/v2/product/%s.json", c.baseURL, barcode))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	params := reqURL.Query()
	params.Set("fields", "product_name,brands,nutriscore_grade,image_url,nutriments")
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// OpenFoodFacts asks API users to identify themselves
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query OpenFoodFacts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrProductNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("OpenFoodFacts returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload productResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode OpenFoodFacts response: %w", err)
	}
	if payload.Status != 1 {
		return nil, ErrProductNotFound
	}

	p := payload.Product
	c.log.Debugw("barcode resolved", "barcode", barcode, "product", p.ProductName)

	return &Product{
		Barcode:    barcode,
		Name:       p.ProductName,
		Brand:      p.Brands,
		NutriScore: strings.ToUpper(p.NutriscoreGrade),
		ImageURL:   p.ImageURL,
		Per100g: Nutriments{
			Calories: p.Nutriments.EnergyKcal100g,
			Protein:  p.Nutriments.Proteins100g,
			Carbs:    p.Nutriments.Carbohydrates100g,
			Fat:      p.Nutriments.Fat100g,
			Sugars:   p.Nutriments.Sugars100g,
			Salt:     p.Nutriments.Salt100g,
		},
	}, nil
}
