package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"yatranepal/pkg/model"
)

// ReservationClient is a typed HTTP client for the reservations service,
// used by sibling services and integration tooling.
type ReservationClient struct {
	httpClient *HttpClient
}

func NewReservationClient(baseUrl string) *ReservationClient {
	return &ReservationClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *ReservationClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/reservations", body)
}

func (c *ReservationClient) CreateRaw(rawBody []byte) (*Response, error) {
	return c.httpClient.POSTRaw("/api/v1/reservations", rawBody)
}

func (c *ReservationClient) GetAll(limit int, offset int64, status string) (*Response, error) {
	q := url.Values{}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))
	if status != "" {
		q.Set("status", status)
	}
	return c.httpClient.GET("/api/v1/reservations?" + q.Encode())
}

func (c *ReservationClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/reservations/id/" + url.PathEscape(id))
}

func (c *ReservationClient) GetByUser(userID string, status string) (*Response, error) {
	path := "/api/v1/reservations/user/" + url.PathEscape(userID)
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	return c.httpClient.GET(path)
}

func (c *ReservationClient) GetByHotel(hotelID string, status string) (*Response, error) {
	path := "/api/v1/reservations/hotel/" + url.PathEscape(hotelID)
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	return c.httpClient.GET(path)
}

func (c *ReservationClient) GetCancellationRequests() (*Response, error) {
	return c.httpClient.GET("/api/v1/reservations/cancellation-requests")
}

func (c *ReservationClient) GetByTransactionID(transactionID string) (*Response, error) {
	return c.httpClient.GET("/api/v1/reservations/transaction/" + url.PathEscape(transactionID))
}

func (c *ReservationClient) GetByPidx(pidx string) (*Response, error) {
	return c.httpClient.GET("/api/v1/reservations/pidx/" + url.PathEscape(pidx))
}

func (c *ReservationClient) GetByProductCode(code string) (*Response, error) {
	return c.httpClient.GET("/api/v1/reservations/product-code/" + url.PathEscape(code))
}

func (c *ReservationClient) Confirm(id string) (*Response, error) {
	return c.httpClient.POST("/api/v1/reservations/id/"+url.PathEscape(id)+"/confirm", nil)
}

func (c *ReservationClient) RequestCancellation(id string) (*Response, error) {
	return c.httpClient.POST("/api/v1/reservations/id/"+url.PathEscape(id)+"/request-cancellation", nil)
}

func (c *ReservationClient) Cancel(id string) (*Response, error) {
	return c.httpClient.POST("/api/v1/reservations/id/"+url.PathEscape(id)+"/cancel", nil)
}

func (c *ReservationClient) UpdatePaymentStatus(id string, status model.PaymentStatus) (*Response, error) {
	body := model.PaymentStatusUpdate{PaymentStatus: status}
	return c.httpClient.PATCH("/api/v1/reservations/id/"+url.PathEscape(id)+"/payment-status", body)
}

func (c *ReservationClient) CheckAvailability(hotelID string, roomIDs []string, dates []string) (*Response, error) {
	q := url.Values{}
	q.Set("hotel_id", hotelID)
	for _, r := range roomIDs {
		q.Add("room_ids", r)
	}
	for _, d := range dates {
		q.Add("dates", d)
	}
	return c.httpClient.GET("/api/v1/availability?" + q.Encode())
}

func (c *ReservationClient) DecodeReservation(resp *Response) (*model.Reservation, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode reservation wrapper:\n%+v\n%s", resp.ToString(), err)
	}

	var reservation model.Reservation
	if err := json.Unmarshal(wrapper.Data, &reservation); err != nil {
		return nil, fmt.Errorf("could not decode reservation json:\n%+v\n%s", resp.ToString(), err)
	}

	return &reservation, nil
}

func (c *ReservationClient) DecodeReservations(resp *Response) ([]*model.Reservation, *Metadata, error) {
	var wrapper struct {
		Data       json.RawMessage `json:"data"`
		TotalCount int64           `json:"total_count"`
		Limit      int             `json:"limit"`
		Offset     int64           `json:"offset"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode paginated resp:\n%+v\n%s", resp.ToString(), err)
	}

	var reservations []*model.Reservation
	if err := json.Unmarshal(wrapper.Data, &reservations); err != nil {
		return nil, nil, fmt.Errorf("could not decode reservation list:\n%+v\n%s", resp.ToString(), err)
	}

	metadata := &Metadata{
		TotalCount: wrapper.TotalCount,
		Limit:      wrapper.Limit,
		Offset:     wrapper.Offset,
	}

	return reservations, metadata, nil
}
