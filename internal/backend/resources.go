package backend

import (
	"context"
	"net/http"
	"strconv"

	"github.com/noah-isme/techskill-console/internal/models"
)

const (
	routeLogin            = "/auth/login"
	routeLogout           = "/auth/logout"
	routeEnquiries        = "/enquiries"
	routeEnquiry          = "/enquiries/{id}"
	routeEnquiryFollowups = "/enquiries/{id}/followups"
	routeFollowups        = "/followups"
	routeAdmissions       = "/admissions"
	routeAdmission        = "/admissions/{id}"
	routeCourses          = "/courses"
	routeCourse           = "/courses/{id}"
	routeFees             = "/fees"
	routeFee              = "/fees/{id}"
	routeDocuments        = "/documents"
	routeDocument         = "/documents/{id}"
	routeSettings         = "/settings"
)

// Login exchanges operator credentials for a backend session.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*Session, error) {
	body, err := c.do(ctx, c.request(ctx, nil).SetHeader("Content-Type", "application/json").SetBody(req), http.MethodPost, routeLogin)
	if err != nil {
		return nil, err
	}
	resp, err := decodeItem[loginBody](body, "data")
	if err != nil {
		return nil, err
	}
	token := resp.AccessToken
	if token == "" {
		token = resp.Token
	}
	if token == "" {
		return nil, ErrMalformed
	}
	session := NewSession(token)
	if session.Subject == "" {
		session.Subject = req.Username
	}
	return session, nil
}

type loginBody struct {
	AccessToken string `json:"access_token"`
	Token       string `json:"token"`
}

// Logout tells the backend to drop the token. A backend without a logout
// route is not an error.
func (c *Client) Logout(ctx context.Context, s *Session) error {
	_, err := c.do(ctx, c.request(ctx, s), http.MethodPost, routeLogout)
	if err != nil && IsNotFound(err) {
		return nil
	}
	return err
}

// ListEnquiries returns all enquiries.
func (c *Client) ListEnquiries(ctx context.Context, s *Session) ([]models.Enquiry, error) {
	items, _, err := listResource[models.Enquiry](ctx, c, s, routeEnquiries, "enquiries", nil)
	return items, err
}

// GetEnquiry loads one enquiry.
func (c *Client) GetEnquiry(ctx context.Context, s *Session, id int64) (*models.Enquiry, error) {
	return getResource[models.Enquiry](ctx, c, s, routeEnquiry, id, "enquiry")
}

// CreateEnquiry submits a new enquiry.
func (c *Client) CreateEnquiry(ctx context.Context, s *Session, payload interface{}) (*models.Enquiry, error) {
	return sendResource[models.Enquiry](ctx, c, s, http.MethodPost, routeEnquiries, nil, payload, "enquiry")
}

// UpdateEnquiry replaces an enquiry's editable fields.
func (c *Client) UpdateEnquiry(ctx context.Context, s *Session, id int64, payload interface{}) (*models.Enquiry, error) {
	return sendResource[models.Enquiry](ctx, c, s, http.MethodPut, routeEnquiry, &id, payload, "enquiry")
}

// DeleteEnquiry removes an enquiry.
func (c *Client) DeleteEnquiry(ctx context.Context, s *Session, id int64) error {
	return c.deleteResource(ctx, s, routeEnquiry, id)
}

// ListFollowups returns the whole follow-up log.
func (c *Client) ListFollowups(ctx context.Context, s *Session) ([]models.Followup, error) {
	items, _, err := listResource[models.Followup](ctx, c, s, routeFollowups, "followups", nil)
	return items, err
}

// ListEnquiryFollowups returns the follow-ups of one enquiry.
func (c *Client) ListEnquiryFollowups(ctx context.Context, s *Session, enquiryID int64) ([]models.Followup, error) {
	req := c.request(ctx, s).SetPathParam("id", strconv.FormatInt(enquiryID, 10))
	body, err := c.do(ctx, req, http.MethodGet, routeEnquiryFollowups)
	if err != nil {
		return nil, err
	}
	items, _, err := decodeList[models.Followup](body, "followups")
	return items, err
}

// CreateFollowup appends a follow-up event.
func (c *Client) CreateFollowup(ctx context.Context, s *Session, payload interface{}) (*models.Followup, error) {
	return sendResource[models.Followup](ctx, c, s, http.MethodPost, routeFollowups, nil, payload, "followup")
}

// ListAdmissions returns all admissions.
func (c *Client) ListAdmissions(ctx context.Context, s *Session) ([]models.Admission, error) {
	items, _, err := listResource[models.Admission](ctx, c, s, routeAdmissions, "admissions", nil)
	return items, err
}

// GetAdmission loads one admission.
func (c *Client) GetAdmission(ctx context.Context, s *Session, id int64) (*models.Admission, error) {
	return getResource[models.Admission](ctx, c, s, routeAdmission, id, "admission")
}

// CreateAdmission submits an admission, attaching photo and signature files
// as multipart parts when provided.
func (c *Client) CreateAdmission(ctx context.Context, s *Session, payload interface{}, files ...FileUpload) (*models.Admission, error) {
	if len(files) == 0 {
		return sendResource[models.Admission](ctx, c, s, http.MethodPost, routeAdmissions, nil, payload, "admission")
	}
	fields, err := payloadFields(payload)
	if err != nil {
		return nil, err
	}
	return sendMultipart[models.Admission](ctx, c, s, http.MethodPost, routeAdmissions, nil, fields, files, "admission")
}

// UpdateAdmission edits an admission.
func (c *Client) UpdateAdmission(ctx context.Context, s *Session, id int64, payload interface{}, files ...FileUpload) (*models.Admission, error) {
	if len(files) == 0 {
		return sendResource[models.Admission](ctx, c, s, http.MethodPut, routeAdmission, &id, payload, "admission")
	}
	fields, err := payloadFields(payload)
	if err != nil {
		return nil, err
	}
	return sendMultipart[models.Admission](ctx, c, s, http.MethodPut, routeAdmission, &id, fields, files, "admission")
}

// DeleteAdmission removes an admission.
func (c *Client) DeleteAdmission(ctx context.Context, s *Session, id int64) error {
	return c.deleteResource(ctx, s, routeAdmission, id)
}

// ListCourses returns all courses.
func (c *Client) ListCourses(ctx context.Context, s *Session) ([]models.Course, error) {
	items, _, err := listResource[models.Course](ctx, c, s, routeCourses, "courses", nil)
	return items, err
}

// GetCourse loads one course.
func (c *Client) GetCourse(ctx context.Context, s *Session, id int64) (*models.Course, error) {
	return getResource[models.Course](ctx, c, s, routeCourse, id, "course")
}

// CreateCourse adds a course.
func (c *Client) CreateCourse(ctx context.Context, s *Session, payload interface{}) (*models.Course, error) {
	return sendResource[models.Course](ctx, c, s, http.MethodPost, routeCourses, nil, payload, "course")
}

// UpdateCourse edits a course.
func (c *Client) UpdateCourse(ctx context.Context, s *Session, id int64, payload interface{}) (*models.Course, error) {
	return sendResource[models.Course](ctx, c, s, http.MethodPut, routeCourse, &id, payload, "course")
}

// DeleteCourse removes a course.
func (c *Client) DeleteCourse(ctx context.Context, s *Session, id int64) error {
	return c.deleteResource(ctx, s, routeCourse, id)
}

// ListFees returns the whole payment ledger.
func (c *Client) ListFees(ctx context.Context, s *Session) ([]models.FeePayment, error) {
	items, _, err := listResource[models.FeePayment](ctx, c, s, routeFees, "fees", nil)
	return items, err
}

// ListStudentFees returns one student's payments.
func (c *Client) ListStudentFees(ctx context.Context, s *Session, studentID int64) ([]models.FeePayment, error) {
	items, _, err := listResource[models.FeePayment](ctx, c, s, routeFees, "fees", map[string]string{"student_id": strconv.FormatInt(studentID, 10)})
	return items, err
}

// GetFee loads one payment.
func (c *Client) GetFee(ctx context.Context, s *Session, id int64) (*models.FeePayment, error) {
	return getResource[models.FeePayment](ctx, c, s, routeFee, id, "fee")
}

// CreateFee records a payment.
func (c *Client) CreateFee(ctx context.Context, s *Session, payload interface{}) (*models.FeePayment, error) {
	return sendResource[models.FeePayment](ctx, c, s, http.MethodPost, routeFees, nil, payload, "fee")
}

// DeleteFee removes a payment.
func (c *Client) DeleteFee(ctx context.Context, s *Session, id int64) error {
	return c.deleteResource(ctx, s, routeFee, id)
}

// ListDocuments returns uploaded documents, optionally for one student.
func (c *Client) ListDocuments(ctx context.Context, s *Session, studentID *int64) ([]models.StudentDocument, error) {
	var query map[string]string
	if studentID != nil {
		query = map[string]string{"student_id": strconv.FormatInt(*studentID, 10)}
	}
	items, _, err := listResource[models.StudentDocument](ctx, c, s, routeDocuments, "documents", query)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].URL = c.UploadURL(items[i].FileName)
	}
	return items, nil
}

// UploadDocument stores a student document.
func (c *Client) UploadDocument(ctx context.Context, s *Session, studentID int64, documentType string, file FileUpload) (*models.StudentDocument, error) {
	fields := map[string]string{
		"student_id":    strconv.FormatInt(studentID, 10),
		"document_type": documentType,
	}
	if file.Field == "" {
		file.Field = "file"
	}
	doc, err := sendMultipart[models.StudentDocument](ctx, c, s, http.MethodPost, routeDocuments, nil, fields, []FileUpload{file}, "document")
	if err != nil {
		return nil, err
	}
	doc.URL = c.UploadURL(doc.FileName)
	return doc, nil
}

// DeleteDocument removes a stored document.
func (c *Client) DeleteDocument(ctx context.Context, s *Session, id int64) error {
	return c.deleteResource(ctx, s, routeDocument, id)
}

// GetSettings loads the institute profile. A backend that has none yet
// answers 404, reported here as (nil, nil).
func (c *Client) GetSettings(ctx context.Context, s *Session) (*models.InstituteSettings, error) {
	body, err := c.do(ctx, c.request(ctx, s), http.MethodGet, routeSettings)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return decodeItem[models.InstituteSettings](body, "settings")
}

// UpdateSettings saves the institute profile as multipart form data with
// an optional logo part.
func (c *Client) UpdateSettings(ctx context.Context, s *Session, settings models.InstituteSettings, logo *FileUpload) (*models.InstituteSettings, error) {
	fields := map[string]string{}
	set := func(key string, value *string) {
		if value != nil {
			fields[key] = *value
		}
	}
	set("name", settings.Name)
	set("address", settings.Address)
	set("phone", settings.Phone)
	set("email", settings.Email)
	set("website", settings.Website)
	set("centerCode", settings.CenterCode)

	var files []FileUpload
	if logo != nil {
		if logo.Field == "" {
			logo.Field = "logo"
		}
		files = append(files, *logo)
	}
	return sendMultipart[models.InstituteSettings](ctx, c, s, http.MethodPut, routeSettings, nil, fields, files, "settings")
}
