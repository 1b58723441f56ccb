package orderControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/MayMartirosyan/svmotors-backend/models"
)

// GET /orders/export
func ExportOrdersToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.Preload("Checkout").Order("created_at DESC").Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Orders")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		headers := []string{
			"Number", "Status", "TotalAmount", "PaymentMethod", "DeliveryType",
			"Name", "Surname", "Email", "Tel", "CreatedAt",
		}
		headerRow := sheet.AddRow()
		for _, h := range headers {
			headerRow.AddCell().SetValue(h)
		}

		for _, o := range orders {
			row := sheet.AddRow()
			row.AddCell().SetValue(o.Number)
			row.AddCell().SetValue(string(o.Status))
			row.AddCell().SetValue(o.TotalAmount)
			if o.Checkout != nil {
				row.AddCell().SetValue(o.Checkout.PaymentMethod)
				row.AddCell().SetValue(o.Checkout.DeliveryType)
				row.AddCell().SetValue(o.Checkout.Name)
				row.AddCell().SetValue(o.Checkout.Surname)
				row.AddCell().SetValue(o.Checkout.Email)
				row.AddCell().SetValue(o.Checkout.Tel)
			} else {
				for i := 0; i < 6; i++ {
					row.AddCell().SetValue("")
				}
			}
			row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
		}

		c.Header("Content-Disposition", `attachment; filename="orders.xlsx"`)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
		}
	}
}
