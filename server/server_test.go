package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/geofield/satextract/common"
	"github.com/geofield/satextract/service"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

const boundaryGeoJSON = `{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[10.0,45.0],[10.1,45.0],[10.1,45.1],[10.0,45.1],[10.0,45.0]]]}}`

func postExtraction(body map[string]interface{}) (*http.Response, string) {
	return postExtractionTo(srv.URL, body)
}

func postExtractionTo(url string, body map[string]interface{}) (*http.Response, string) {
	b, err := json.Marshal(body)
	Expect(err).NotTo(HaveOccurred())
	resp, err := http.Post(url+"/extraction", "application/json", bytes.NewReader(b))
	Expect(err).NotTo(HaveOccurred())
	defer resp.Body.Close()
	msg, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	return resp, string(msg)
}

func extractionPayload() map[string]interface{} {
	return map[string]interface{}{
		"start_date": "2023-01-01",
		"end_date":   "2024-01-02",
		"satellite":  0,
		"bands":      []string{"B4", "B3", "B2"},
		"scale":      10,
		"farm_name":  "hospital_area",
		"output_uri": outputDir,
		"boundary":   json.RawMessage(boundaryGeoJSON),
	}
}

var _ = Describe("Extraction", func() {
	Describe("running a valid request", func() {
		var results []common.Result

		It("should return the results", func() {
			resp, msg := postExtraction(extractionPayload())
			Expect(resp.StatusCode).To(Equal(200), msg)
			Expect(json.Unmarshal([]byte(msg), &results)).To(Succeed())
			Expect(results).To(HaveLen(3))
			for _, r := range results {
				Expect(r.Status).To(Equal(common.StatusDONE))
				Expect(r.Farm).To(Equal("hospital_area"))
			}
		})

		It("should have exported one file per band", func() {
			for _, band := range []string{"B4", "B3", "B2"} {
				_, err := os.Stat(filepath.Join(outputDir, "hospital_area", "Sentinel2", band+".tif"))
				Expect(err).NotTo(HaveOccurred())
			}
		})
	})

	Describe("running a request with a preview", func() {
		It("should export the natural color rendering", func() {
			payload := extractionPayload()
			payload["plot_images"] = true
			resp, msg := postExtraction(payload)
			Expect(resp.StatusCode).To(Equal(200), msg)
			var results []common.Result
			Expect(json.Unmarshal([]byte(msg), &results)).To(Succeed())
			Expect(results).To(HaveLen(4))
			_, err := os.Stat(filepath.Join(outputDir, "hospital_area", "Sentinel2", "preview.png"))
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("running invalid requests", func() {
		It("should refuse an unknown satellite", func() {
			payload := extractionPayload()
			payload["satellite"] = 7
			resp, msg := postExtraction(payload)
			Expect(resp.StatusCode).To(Equal(400))
			Expect(msg).To(ContainSubstring("satellite"))
		})

		It("should refuse an unknown band", func() {
			payload := extractionPayload()
			payload["bands"] = []string{"B4", "NOT_A_BAND"}
			resp, msg := postExtraction(payload)
			Expect(resp.StatusCode).To(Equal(400))
			Expect(msg).To(ContainSubstring("NOT_A_BAND"))
		})

		It("should refuse an inverted date range", func() {
			payload := extractionPayload()
			payload["start_date"], payload["end_date"] = payload["end_date"], payload["start_date"]
			resp, _ := postExtraction(payload)
			Expect(resp.StatusCode).To(Equal(400))
		})

		It("should refuse a missing boundary", func() {
			payload := extractionPayload()
			delete(payload, "boundary")
			resp, msg := postExtraction(payload)
			Expect(resp.StatusCode).To(Equal(400))
			Expect(msg).To(ContainSubstring("boundary"))
		})

		It("should refuse a degenerate boundary", func() {
			payload := extractionPayload()
			payload["boundary"] = json.RawMessage(`{"type":"Polygon","coordinates":[[[10.0,45.0],[10.0,45.0],[10.0,45.0],[10.0,45.0]]]}`)
			resp, _ := postExtraction(payload)
			Expect(resp.StatusCode).To(Equal(400))
		})
	})

	Describe("handling remote failures", func() {
		It("should answer 503 on a transient failure", func() {
			downImagery.err = service.MakeTemporary(fmt.Errorf("503 Service Unavailable"))
			resp, _ := postExtractionTo(downSrv.URL, extractionPayload())
			Expect(resp.StatusCode).To(Equal(503))
		})

		It("should answer 400 on a rejected query", func() {
			downImagery.err = service.MakeFatal(fmt.Errorf("400 Bad Request: invalid expression"))
			resp, _ := postExtractionTo(downSrv.URL, extractionPayload())
			Expect(resp.StatusCode).To(Equal(400))
		})

		It("should answer 500 otherwise", func() {
			downImagery.err = fmt.Errorf("a plain failure")
			resp, _ := postExtractionTo(downSrv.URL, extractionPayload())
			Expect(resp.StatusCode).To(Equal(500))
		})
	})
})

var _ = Describe("Catalog", func() {
	It("should list the satellites", func() {
		resp, err := http.Get(srv.URL + "/satellites")
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(200))
		var infos []struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		}
		Expect(json.NewDecoder(resp.Body).Decode(&infos)).To(Succeed())
		Expect(infos).To(HaveLen(4))
		Expect(infos[0].Name).To(Equal("Sentinel2"))
	})

	It("should describe the bands by name and by id", func() {
		for _, satellite := range []string{"Landsat8", "1"} {
			resp, err := http.Get(fmt.Sprintf("%s/satellite/%s/bands", srv.URL, satellite))
			Expect(err).NotTo(HaveOccurred())
			var info struct {
				Satellite    string   `json:"satellite"`
				Dataset      string   `json:"dataset"`
				NaturalColor []string `json:"natural_color"`
			}
			Expect(json.NewDecoder(resp.Body).Decode(&info)).To(Succeed())
			resp.Body.Close()
			Expect(info.Satellite).To(Equal("Landsat8"))
			Expect(info.Dataset).To(Equal("LANDSAT/LC08/C02/T1_L2"))
			Expect(info.NaturalColor).To(Equal([]string{"SR_B4", "SR_B3", "SR_B2"}))
		}
	})

	It("should refuse an unknown satellite", func() {
		resp, err := http.Get(srv.URL + "/satellite/9/bands")
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(400))
	})
})
