package seats

type UpdateSalesRequest struct {
	Suspended *bool `json:"suspended" binding:"required"`
}

type UpdateSeatStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=available blocked"`
}
