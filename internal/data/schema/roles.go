package schema

// Physical table names of the compliance store.
const (
	TableAnswers     = "evaluation_answers"
	TableEvaluations = "evaluations"
	TableControls    = "controls"
	TableArticles    = "articles"
	TableRegulations = "regulations"
	TableCompanies   = "companies"
)

// Logical roles. The same role name can appear in several tables.
const (
	RoleID             = "id"
	RoleEvaluation     = "evaluation"
	RoleKey            = "key"
	RoleValue          = "value"
	RoleComment        = "comment"
	RoleArticle        = "article"
	RoleUpdated        = "updated"
	RoleCompany        = "company"
	RoleCompanyName    = "company_name"
	RoleRegulation     = "regulation"
	RoleStarted        = "started"
	RoleDue            = "due"
	RoleStatus         = "status"
	RoleQuestion       = "question"
	RoleRecommendation = "recommendation"
	RoleWeight         = "weight"
	RoleActive         = "active"
	RoleCode           = "code"
	RoleTitle          = "title"
	RoleEnabled        = "enabled"
	RoleName           = "name"
)

// Role maps a logical field onto the physical column names it has carried
// across schema revisions, in priority order.
type Role struct {
	Name       string
	Candidates []string
	Required   bool
}

func required(name string, candidates ...string) Role {
	return Role{Name: name, Candidates: candidates, Required: true}
}

func optional(name string, candidates ...string) Role {
	return Role{Name: name, Candidates: candidates}
}

// DefaultRoles is the role catalogue for every table the persistence engine
// touches through resolved names.
func DefaultRoles() map[string][]Role {
	return map[string][]Role{
		TableAnswers: {
			required(RoleEvaluation, "evaluation_id", "evaluacion_id"),
			required(RoleKey, "control_key", "clave", "key"),
			required(RoleValue, "respuesta", "valor", "value"),
			optional(RoleComment, "comment", "comentario", "comments"),
			optional(RoleArticle, "article_code", "articulo", "article_ref"),
			optional(RoleID, "id"),
			optional(RoleUpdated, "updated_at", "actualizado_en"),
		},
		TableEvaluations: {
			optional(RoleID, "id"),
			required(RoleCompany, "company_id", "empresa_id"),
			optional(RoleCompanyName, "company_name", "empresa"),
			required(RoleRegulation, "regulation_code", "normativa", "regulation", "law", "law_code", "codigo_ley"),
			required(RoleStarted, "started_at", "created_at", "fecha_inicio"),
			optional(RoleDue, "due_at", "deadline_at", "vence", "fecha_limite"),
			optional(RoleStatus, "status", "estado"),
		},
		TableControls: {
			required(RoleRegulation, "regulation_id", "regulacion_id"),
			required(RoleKey, "control_key", "clave", "key"),
			required(RoleQuestion, "question", "pregunta"),
			optional(RoleRecommendation, "recommendation", "recomendacion"),
			optional(RoleWeight, "weight", "peso"),
			optional(RoleActive, "is_active", "activo"),
			optional(RoleArticle, "article_id", "articulo_id"),
		},
		TableArticles: {
			optional(RoleID, "id"),
			optional(RoleCode, "code", "codigo"),
			optional(RoleTitle, "title", "titulo"),
			optional(RoleEnabled, "is_enabled", "habilitado"),
		},
		TableRegulations: {
			required(RoleID, "id"),
			required(RoleCode, "code", "codigo"),
		},
		TableCompanies: {
			optional(RoleID, "id"),
			optional(RoleName, "name", "nombre", "razon_social"),
		},
	}
}
