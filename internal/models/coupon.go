package models

type Coupon struct {
	CouponID int    `json:"coupon_id"`
	Code     string `json:"code" validate:"required,max=50"`
	Discount int    `json:"discount" validate:"gte=0,lte=100"`
	Active   bool   `json:"active"`
}
