package utils

import "fmt"

// FormatTicketID renders <routeNo>-<routeSerial:3>-<overallSerial:5>.
func FormatTicketID(routeNo string, routeSerial, overallSerial int64) string {
	return fmt.Sprintf("%s-%03d-%05d", routeNo, routeSerial, overallSerial)
}
