// internal/tests/api_test.go
package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/creolabs/creator-ledger/internal/config"
	"github.com/creolabs/creator-ledger/internal/handlers"
	"github.com/creolabs/creator-ledger/internal/ledger"
	"github.com/creolabs/creator-ledger/internal/middleware"
	"github.com/creolabs/creator-ledger/internal/services"
	"github.com/creolabs/creator-ledger/internal/utils"
)

const (
	testAdmin = "ledger:admin"
	alice     = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	bob       = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

// APITestSuite drives the HTTP surface against an in-memory ledger; no
// database is attached, so journaling is skipped but full core semantics
// apply.
type APITestSuite struct {
	suite.Suite
	router        *gin.Engine
	ledgerService *services.LedgerService
}

// asAddress stands in for the JWT middleware and binds the caller identity.
func asAddress(addr string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("ledger_address", addr)
		c.Next()
	}
}

func (suite *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Environment: "test",
		Ledger: config.LedgerConfig{
			AdminAddress:    testAdmin,
			TreasuryAddress: "ledger:treasury",
			FeeBps:          250,
		},
	}

	var err error
	suite.ledgerService, err = services.NewLedgerService(nil, cfg)
	suite.Require().NoError(err)

	core := suite.ledgerService.Core()
	suite.Require().NoError(suite.ledgerService.GrantRole(testAdmin, testAdmin, ledger.RoleMinter))

	creatorHandler := handlers.NewCreatorHandler(suite.ledgerService)
	contentHandler := handlers.NewContentHandler(suite.ledgerService, nil)
	marketHandler := handlers.NewMarketHandler(suite.ledgerService)

	suite.router = gin.New()
	v1 := suite.router.Group("/v1")

	// Each identity gets its own route tree so tests can pick the caller.
	for addr, prefix := range map[string]string{
		alice:     "/as-alice",
		bob:       "/as-bob",
		testAdmin: "/as-admin",
	} {
		g := v1.Group(prefix)
		g.Use(asAddress(addr))
		g.POST("/creators", creatorHandler.Register)
		g.POST("/contents", contentHandler.Publish)
		g.POST("/contents/:id/purchase", contentHandler.Purchase)
		g.POST("/contents/:id/tip", contentHandler.Tip)
		g.POST("/market/mint", middleware.RoleRequired(core, ledger.RoleMinter), marketHandler.MintContentAsset)
		g.POST("/market/listings", marketHandler.List)
		g.POST("/market/listings/:assetID/buy", marketHandler.BuyNow)
	}

	v1.GET("/contents", contentHandler.GetContents)
	v1.GET("/contents/:id", contentHandler.GetContent)
}

func (suite *APITestSuite) postJSON(path string, body map[string]interface{}) *httptest.ResponseRecorder {
	jsonData, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", path, bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *APITestSuite) registerCreator(prefix, username string) {
	w := suite.postJSON("/v1"+prefix+"/creators", map[string]interface{}{
		"username":     username,
		"creator_type": "traditional",
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
}

func (suite *APITestSuite) TestCreatorRegistration() {
	suite.registerCreator("/as-alice", "alice")

	// Second registration for the same identity conflicts.
	w := suite.postJSON("/v1/as-alice/creators", map[string]interface{}{
		"username":     "alice2",
		"creator_type": "traditional",
	})
	assert.Equal(suite.T(), http.StatusConflict, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.False(suite.T(), response["success"].(bool))
}

func (suite *APITestSuite) TestPublishAndPurchaseFlow() {
	suite.registerCreator("/as-alice", "alice")
	suite.Require().NoError(suite.ledgerService.Deposit(bob, 1_000))

	w := suite.postJSON("/v1/as-alice/contents", map[string]interface{}{
		"title":        "sunset",
		"content_ref":  "sha256:abc",
		"content_type": "image",
		"price":        100,
		"for_sale":     true,
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data struct {
			ID uint64 `json:"ID"`
		} `json:"data"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))
	contentID := created.Data.ID
	suite.Require().NotZero(contentID)

	// Underpayment is rejected and nothing moves.
	w = suite.postJSON(fmt.Sprintf("/v1/as-bob/contents/%d/purchase", contentID), map[string]interface{}{
		"payment": 50,
	})
	assert.Equal(suite.T(), http.StatusPaymentRequired, w.Code)
	assert.Equal(suite.T(), int64(1_000), suite.ledgerService.Core().BalanceOf(bob))

	w = suite.postJSON(fmt.Sprintf("/v1/as-bob/contents/%d/purchase", contentID), map[string]interface{}{
		"payment": 100,
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	// 2.5% fee: 98 to the creator, 2 to the treasury.
	core := suite.ledgerService.Core()
	assert.Equal(suite.T(), int64(900), core.BalanceOf(bob))
	assert.Equal(suite.T(), int64(98), core.BalanceOf(alice))
	assert.Equal(suite.T(), int64(2), core.BalanceOf("ledger:treasury"))
}

func (suite *APITestSuite) TestMintRequiresMinterCapability() {
	suite.registerCreator("/as-alice", "alice")

	w := suite.postJSON("/v1/as-alice/contents", map[string]interface{}{
		"title":        "piece",
		"content_ref":  "sha256:def",
		"content_type": "image",
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	w = suite.postJSON("/v1/as-alice/market/mint", map[string]interface{}{
		"content_id":   1,
		"transferable": true,
	})
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	w = suite.postJSON("/v1/as-admin/market/mint", map[string]interface{}{
		"content_id":   1,
		"transferable": true,
	})
	assert.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())
}

func (suite *APITestSuite) TestFixedPriceSaleOverHTTP() {
	suite.registerCreator("/as-alice", "alice")
	suite.registerCreator("/as-bob", "bob")
	suite.Require().NoError(suite.ledgerService.Deposit(bob, 500))

	w := suite.postJSON("/v1/as-alice/contents", map[string]interface{}{
		"title":        "piece",
		"content_ref":  "sha256:def",
		"content_type": "image",
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	w = suite.postJSON("/v1/as-admin/market/mint", map[string]interface{}{
		"content_id":   1,
		"royalty_bps":  500,
		"transferable": true,
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var minted struct {
		Data struct {
			ID uint64 `json:"ID"`
		} `json:"data"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &minted))
	assetID := minted.Data.ID

	w = suite.postJSON("/v1/as-alice/market/listings", map[string]interface{}{
		"asset_id": assetID,
		"price":    200,
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = suite.postJSON(fmt.Sprintf("/v1/as-bob/market/listings/%d/buy", assetID), map[string]interface{}{
		"payment": 200,
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	asset, err := suite.ledgerService.Core().GetAsset(assetID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), ledger.Address(bob), asset.Owner)
}

func (suite *APITestSuite) TestBrowseWithoutDatabase() {
	// Without Postgres attached the browse surfaces answer empty instead of
	// panicking on a nil handle.
	req, _ := http.NewRequest("GET", "/v1/contents", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	assert.Equal(suite.T(), http.StatusOK, w.Code, w.Body.String())

	params := utils.PaginationParams{Page: 1, Limit: 20}

	creators, total, err := suite.ledgerService.SearchCreators(params)
	suite.Require().NoError(err)
	assert.Empty(suite.T(), creators)
	assert.Zero(suite.T(), total)

	listings, total, err := suite.ledgerService.SearchListings(params)
	suite.Require().NoError(err)
	assert.Empty(suite.T(), listings)
	assert.Zero(suite.T(), total)

	events, total, err := suite.ledgerService.RecentEvents(params)
	suite.Require().NoError(err)
	assert.Empty(suite.T(), events)
	assert.Zero(suite.T(), total)
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
