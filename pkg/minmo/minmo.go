package minmo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Api is a thin client for the swap processing service. The zero value
// is not usable, URL and AgentID must be set.
type Api struct {
	URL     string
	APIKey  string
	AgentID string
	Client  http.Client
}

func (api *Api) CreateSwap(request CreateSwapRequest) (*Swap, error) {
	if request.Type == "" {
		request.Type = SwapTypeOfframp
	}
	if request.AgentMargin == 0 {
		request.AgentMargin = DefaultAgentMargin
	}
	if request.AgentId == "" {
		request.AgentId = api.AgentID
	}

	resp, err := sendPostRequest[Swap](api, "/swap", request)
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%s", resp.Error)
	}

	return resp, nil
}

func (api *Api) GetSwap(swapId string) (*Swap, error) {
	resp, err := sendGetRequest[Swap](api, fmt.Sprintf("/swap/%s", swapId))
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%s", resp.Error)
	}

	return resp, nil
}

// GetAgentSwaps returns all swaps of the configured agent, optionally
// narrowed to one beneficiary. The service has been observed to answer
// with a bare array or with the list wrapped under a "data" or "swaps"
// key, all three are accepted.
func (api *Api) GetAgentSwaps(beneficiaryId string) ([]Swap, error) {
	endpoint := fmt.Sprintf("/swap/agent/%s", api.AgentID)
	if beneficiaryId != "" {
		endpoint += "?beneficiaryId=" + url.QueryEscape(beneficiaryId)
	}

	raw, err := sendRawGetRequest(api, endpoint)
	if err != nil {
		return nil, err
	}
	return decodeSwapList(raw)
}

func (api *Api) GetFxRate(base, target Currency) (*FxRateResponse, error) {
	endpoint := fmt.Sprintf(
		"/fx/rates/%s/%s",
		strings.ToUpper(string(base)), strings.ToUpper(string(target)),
	)
	resp, err := sendGetRequest[FxRateResponse](api, endpoint)
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%s", resp.Error)
	}

	return resp, nil
}

func decodeSwapList(raw []byte) ([]Swap, error) {
	var swaps []Swap
	if err := json.Unmarshal(raw, &swaps); err == nil {
		return swaps, nil
	}

	var envelope struct {
		Data  []Swap `json:"data"`
		Swaps []Swap `json:"swaps"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("could not parse swap list response: %v", err)
	}
	if envelope.Error != "" {
		return nil, fmt.Errorf("%s", envelope.Error)
	}
	if envelope.Data != nil {
		return envelope.Data, nil
	}
	return envelope.Swaps, nil
}

func sendGetRequest[T any](api *Api, endpoint string) (*T, error) {
	raw, err := sendRawGetRequest(api, endpoint)
	if err != nil {
		return nil, err
	}

	var res T
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("could not parse swap service response: %v", err)
	}
	return &res, nil
}

func sendRawGetRequest(api *Api, endpoint string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, api.URL+endpoint, nil)
	if err != nil {
		return nil, err
	}
	api.setHeaders(req)

	res, err := api.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf(
			"swap service returned status %d: %s", res.StatusCode, string(raw),
		)
	}
	return raw, nil
}

func sendPostRequest[T any](api *Api, endpoint string, requestBody interface{}) (*T, error) {
	rawBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(
		http.MethodPost, api.URL+endpoint, bytes.NewBuffer(rawBody),
	)
	if err != nil {
		return nil, err
	}
	api.setHeaders(req)

	res, err := api.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf(
			"swap service returned status %d: %s", res.StatusCode, string(raw),
		)
	}

	var resp T
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf(
			"could not parse swap service response with status %d: %v",
			res.StatusCode, err,
		)
	}
	return &resp, nil
}

func (api *Api) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if api.APIKey != "" {
		req.Header.Set("X-API-Key", api.APIKey)
	}
}
